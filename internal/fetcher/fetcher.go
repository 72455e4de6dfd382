package fetcher

import "fmt"

// Fetcher retrieves raw markup for one page of the paginated index listing.
type Fetcher interface {
	FetchPage(pageIndex int) ([]byte, error)
	Name() string
}

// FetchError describes a failed page fetch. It is fatal to the current
// page but the harvest loop decides whether to continue the run.
type FetchError struct {
	URL       string
	PageIndex int
	Status    int
	Err       error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch page %d (%s): status %d", e.PageIndex, e.URL, e.Status)
	}
	return fmt.Sprintf("fetch page %d (%s): %v", e.PageIndex, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
