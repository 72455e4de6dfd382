// Package fallback recovers a single current-day data point from alternate
// sources when the paginated harvest comes back empty.
package fallback

import (
	"bytes"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NepseHarvest/internal/model"
	"NepseHarvest/internal/volume"
)

var numeralPattern = regexp.MustCompile(`\d+\.?\d*`)

// Getter fetches one URL. fetcher.HTTPFetcher satisfies this with its
// shorter fallback timeout.
type Getter interface {
	Get(rawURL string, pageIndex int) ([]byte, error)
}

// Source attempts to produce zero or one current data point from a page.
type Source interface {
	Name() string
	Probe(now time.Time) (*model.Record, error)
}

// KeywordSource scans a page's visible text for the index keyword pair and
// takes the first numeral as the current closing value. Deliberately loose;
// it only runs when the structured harvest produced nothing at all.
type KeywordSource struct {
	URL    string
	Client Getter
}

func (s *KeywordSource) Name() string { return s.URL }

func (s *KeywordSource) Probe(now time.Time) (*model.Record, error) {
	body, err := s.Client.Get(s.URL, 1)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	text := strings.ToLower(doc.Text())
	if !strings.Contains(text, "nepse") || !strings.Contains(text, "index") {
		return nil, fmt.Errorf("no index data recognized")
	}

	numeral := numeralPattern.FindString(text)
	if numeral == "" {
		return nil, fmt.Errorf("no numeral found")
	}
	closePrice, err := strconv.ParseFloat(numeral, 64)
	if err != nil {
		return nil, fmt.Errorf("parse numeral %q: %w", numeral, err)
	}

	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return &model.Record{
		Date:   date,
		Close:  closePrice,
		Volume: volume.Estimate(closePrice, date),
	}, nil
}

// Probe tries each alternate source in priority order until one yields a
// data point. Per-source failures are logged and skipped.
type Probe struct {
	Sources []Source
}

// NewProbe builds keyword sources over the configured alternate URLs.
func NewProbe(urls []string, client Getter) *Probe {
	sources := make([]Source, 0, len(urls))
	for _, u := range urls {
		sources = append(sources, &KeywordSource{URL: u, Client: client})
	}
	return &Probe{Sources: sources}
}

// Run returns at most one record, dated today.
func (p *Probe) Run(now time.Time) []model.Record {
	for _, src := range p.Sources {
		log.Printf("[INFO] trying alternative source: %s", src.Name())
		rec, err := src.Probe(now)
		if err != nil {
			log.Printf("[WARN] alternative source %s failed: %v", src.Name(), err)
			continue
		}
		return []model.Record{*rec}
	}
	log.Println("[ERROR] all alternative sources failed")
	return nil
}
