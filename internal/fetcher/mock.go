package fetcher

// MockFetcher returns canned markup per page for development and testing.
type MockFetcher struct {
	Pages map[int][]byte
	Err   error
	// ErrAtPage, when non-zero, fails that page only.
	ErrAtPage int
	Calls     []int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPage(pageIndex int) ([]byte, error) {
	m.Calls = append(m.Calls, pageIndex)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.ErrAtPage != 0 && pageIndex == m.ErrAtPage {
		return nil, &FetchError{URL: "mock", PageIndex: pageIndex, Status: 503}
	}
	markup, ok := m.Pages[pageIndex]
	if !ok {
		return nil, &FetchError{URL: "mock", PageIndex: pageIndex, Status: 404}
	}
	return markup, nil
}
