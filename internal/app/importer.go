package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/query"
)

type ImportOutcome string

const (
	ImportCreated ImportOutcome = "created"
	ImportSkipped ImportOutcome = "skipped" // already present
	ImportMissing ImportOutcome = "missing" // unknown to the directory
	ImportFailed  ImportOutcome = "failed"
)

// ImportSummary counts outcomes of a batch import.
type ImportSummary map[ImportOutcome]int

// ImportService copies hotels from the upstream directory into the store.
type ImportService struct {
	dir    domain.DirectoryClient
	repo   domain.HotelRepository
	hotels *HotelService
}

func NewImportService(d domain.DirectoryClient, r domain.HotelRepository, h *HotelService) *ImportService {
	return &ImportService{dir: d, repo: r, hotels: h}
}

// ImportProperty fetches one property and creates it unless a hotel with the
// same name and postal code already exists.
func (s *ImportService) ImportProperty(ctx context.Context, id int64) (ImportOutcome, error) {
	p, err := s.dir.GetProperty(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		log.Info().Int64("id", id).Msg("property not in directory")
		return ImportMissing, nil
	}
	if err != nil {
		return ImportFailed, fmt.Errorf("fetch property %d: %w", id, err)
	}
	if got := propertyID(p); got != 0 && got != id {
		log.Warn().Int64("id", id).Int64("payload_id", got).Msg("directory returned a different property id")
	}

	h := mapProperty(p)
	exists, err := s.exists(ctx, h)
	if err != nil {
		return ImportFailed, err
	}
	if exists {
		return ImportSkipped, nil
	}
	created, err := s.hotels.CreateHotel(ctx, h)
	if err != nil {
		return ImportFailed, fmt.Errorf("property %d: %w", id, err)
	}
	log.Info().Int64("id", id).Str("hotel", created.ID).Msg("property imported")
	return ImportCreated, nil
}

func (s *ImportService) exists(ctx context.Context, h domain.Hotel) (bool, error) {
	f := query.Filter{}.
		Where("name", query.Eq, h.Name).
		Where("postalcode", query.Eq, h.PostalCode)
	n, err := s.repo.CountHotels(ctx, f)
	if err != nil {
		return false, fmt.Errorf("lookup %q: %w", h.Name, err)
	}
	return n > 0, nil
}

// ImportAll imports ids with at most workers requests in flight. Failures
// are logged and counted; the batch keeps going.
func (s *ImportService) ImportAll(ctx context.Context, ids []int64, workers int) (ImportSummary, error) {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sum = ImportSummary{}
	)
	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return sum, fmt.Errorf("import cancelled: %w", err)
		}
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			defer sem.Release(1)

			out, err := s.ImportProperty(ctx, id)
			if err != nil {
				log.Warn().Int64("id", id).Str("err_type", observability.LabelErr(err)).Err(err).Msg("import failed")
			}
			mu.Lock()
			sum[out]++
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return sum, nil
}
