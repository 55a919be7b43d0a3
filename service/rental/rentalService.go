// Package rental implements the rental admission and waitlist engine: it
// decides the initial status of every new request, drives the
// pending/approved/queued/declined/returned lifecycle, and keeps book
// availability and queue positions consistent.
package rental

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
	"github.com/SenyaGur/ukrlibrary/util/metrics"
)

// Repo is the persistence contract the engine drives. All mutating methods
// run inside the transaction owned by ExecuteTransaction; the book row lock
// taken by GetBookForUpdate serializes concurrent operations per book.
type Repo interface {
	ExecuteTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error

	GetBookForUpdate(ctx context.Context, tx *sqlx.Tx, bookID string) (bool, error)
	SetBookAvailable(ctx context.Context, tx *sqlx.Tx, bookID string, available bool) error

	Insert(ctx context.Context, tx *sqlx.Tx, r *model.RentalRequest) error
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.RentalRequest, error)
	MarkApproved(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error
	MarkReturned(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error
	MarkDeclined(ctx context.Context, tx *sqlx.Tx, id string) error

	MaxQueuePosition(ctx context.Context, tx *sqlx.Tx, bookID string) (int, error)
	NextInQueue(ctx context.Context, tx *sqlx.Tx, bookID string) (*model.RentalRequest, error)
	PromoteToPending(ctx context.Context, tx *sqlx.Tx, id string) error
	ShiftQueueAfter(ctx context.Context, tx *sqlx.Tx, bookID string, position int) error

	List(ctx context.Context, readerID string, status string) ([]model.RentalRequest, error)
	ListQueue(ctx context.Context, bookID string) ([]model.QueueEntry, error)
}

// ReaderRepo resolves renter identity inside the admission transaction.
type ReaderRepo interface {
	FindIDByPhone(ctx context.Context, tx *sqlx.Tx, phone string) (string, error)
	CreateFromRenter(ctx context.Context, tx *sqlx.Tx, name, surname, phone string) (string, error)
}

type CreateInput struct {
	BookID         string
	BookTitle      string
	RenterName     string
	RenterPhone    string
	RenterEmail    string
	RentalDuration string
	ReaderID       *string
	ChildID        *string
	AutoApprove    bool
}

type Service interface {
	// Create admits a new rental request: approved (auto-approve on an
	// available book), pending (available book) or queued (book on loan).
	Create(ctx context.Context, in CreateInput) (*model.RentalRequest, error)

	// SetStatus applies an admin status transition and its side effects on
	// book availability and the waitlist.
	SetStatus(ctx context.Context, id string, target model.RentalStatus) (*model.RentalRequest, error)

	List(ctx context.Context, readerID, status string) ([]model.RentalRequest, error)
	Queue(ctx context.Context, bookID string) ([]model.QueueEntry, error)
}

type service struct {
	r   Repo
	rr  ReaderRepo
	log *slog.Logger
}

func New(r Repo, rr ReaderRepo, log *slog.Logger) Service {
	return &service{r: r, rr: rr, log: log}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*model.RentalRequest, error) {
	for _, f := range []struct{ name, value string }{
		{"book_id", in.BookID},
		{"book_title", in.BookTitle},
		{"renter_name", in.RenterName},
		{"renter_phone", in.RenterPhone},
		{"rental_duration", in.RentalDuration},
	} {
		if f.value == "" {
			return nil, apperrors.Validation(f.name + " is required")
		}
	}

	req := &model.RentalRequest{
		ID:             uuid.NewString(),
		BookID:         in.BookID,
		BookTitle:      in.BookTitle,
		RenterName:     in.RenterName,
		RenterPhone:    in.RenterPhone,
		RenterEmail:    in.RenterEmail,
		RentalDuration: in.RentalDuration,
		ChildID:        in.ChildID,
	}

	err := s.r.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		available, err := s.r.GetBookForUpdate(ctx, tx, in.BookID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("book")
		}
		if err != nil {
			return err
		}

		readerID, err := s.resolveReader(ctx, tx, in)
		if err != nil {
			return err
		}
		req.ReaderID = readerID

		switch {
		case available && in.AutoApprove:
			now := time.Now().UTC()
			req.Status = model.RentalApproved
			req.ApprovedAt = &now
		case available:
			req.Status = model.RentalPending
		default:
			max, err := s.r.MaxQueuePosition(ctx, tx, in.BookID)
			if err != nil {
				return err
			}
			pos := max + 1
			req.Status = model.RentalQueued
			req.QueuePosition = &pos
		}

		if err := s.r.Insert(ctx, tx, req); err != nil {
			return err
		}
		if req.Status == model.RentalApproved {
			return s.r.SetBookAvailable(ctx, tx, in.BookID, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RentalsCreated.WithLabelValues(string(req.Status)).Inc()
	s.log.Info("rental request created",
		"id", req.ID,
		"book_id", req.BookID,
		"status", req.Status,
	)
	return req, nil
}

// resolveReader returns the reader to attribute the request to. An explicit
// reader id is used verbatim, without an existence check. Otherwise the phone
// is matched exactly against phone1/phone2, and a minimal reader row is
// created on a miss.
func (s *service) resolveReader(ctx context.Context, tx *sqlx.Tx, in CreateInput) (*string, error) {
	if in.ReaderID != nil && *in.ReaderID != "" {
		return in.ReaderID, nil
	}
	id, err := s.rr.FindIDByPhone(ctx, tx, in.RenterPhone)
	if err != nil {
		return nil, err
	}
	if id == "" {
		name, surname := splitRenterName(in.RenterName)
		id, err = s.rr.CreateFromRenter(ctx, tx, name, surname, in.RenterPhone)
		if err != nil {
			return nil, err
		}
	}
	return &id, nil
}

// splitRenterName splits on the last space: the trailing token is the
// surname, the remainder the given name. A single token fills both.
func splitRenterName(full string) (name, surname string) {
	full = strings.TrimSpace(full)
	idx := strings.LastIndex(full, " ")
	if idx < 0 {
		return full, full
	}
	return strings.TrimSpace(full[:idx]), full[idx+1:]
}

func (s *service) SetStatus(ctx context.Context, id string, target model.RentalStatus) (*model.RentalRequest, error) {
	switch target {
	case model.RentalApproved, model.RentalDeclined, model.RentalReturned:
	default:
		return nil, apperrors.Validation(`status must be "approved", "declined", or "returned"`)
	}

	var updated *model.RentalRequest
	err := s.r.ExecuteTransaction(ctx, func(tx *sqlx.Tx) error {
		req, err := s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("rental request")
		}
		if err != nil {
			return err
		}

		// Lock the book row before any availability or queue write.
		if _, err := s.r.GetBookForUpdate(ctx, tx, req.BookID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NotFound("book")
			}
			return err
		}

		switch target {
		case model.RentalApproved:
			err = s.approve(ctx, tx, req)
		case model.RentalReturned:
			err = s.markReturned(ctx, tx, req)
		case model.RentalDeclined:
			err = s.decline(ctx, tx, req)
		}
		if err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RentalTransitions.WithLabelValues(string(target)).Inc()
	s.log.Info("rental status changed",
		"id", updated.ID,
		"book_id", updated.BookID,
		"status", updated.Status,
	)
	return updated, nil
}

// approve accepts any source status: admins can force-approve a request
// regardless of its history. The book is marked unavailable unconditionally.
func (s *service) approve(ctx context.Context, tx *sqlx.Tx, req *model.RentalRequest) error {
	now := time.Now().UTC()
	if err := s.r.MarkApproved(ctx, tx, req.ID, now); err != nil {
		return err
	}
	if err := s.r.SetBookAvailable(ctx, tx, req.BookID, false); err != nil {
		return err
	}
	req.Status = model.RentalApproved
	req.ApprovedAt = &now
	req.QueuePosition = nil
	return nil
}

func (s *service) markReturned(ctx context.Context, tx *sqlx.Tx, req *model.RentalRequest) error {
	if req.Status != model.RentalApproved {
		return apperrors.InvalidTransition("only approved rentals can be returned")
	}
	now := time.Now().UTC()
	if err := s.r.MarkReturned(ctx, tx, req.ID, now); err != nil {
		return err
	}
	if err := s.promoteNextOrRelease(ctx, tx, req.BookID); err != nil {
		return err
	}
	req.Status = model.RentalReturned
	req.ReturnDate = &now
	return nil
}

// promoteNextOrRelease moves the head of the waitlist to pending and closes
// the gap, or releases the book when the waitlist is empty. The promoted
// request still needs admin approval, so availability stays false.
func (s *service) promoteNextOrRelease(ctx context.Context, tx *sqlx.Tx, bookID string) error {
	next, err := s.r.NextInQueue(ctx, tx, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return s.r.SetBookAvailable(ctx, tx, bookID, true)
	}
	if err != nil {
		return err
	}
	if err := s.r.PromoteToPending(ctx, tx, next.ID); err != nil {
		return err
	}
	if next.QueuePosition != nil {
		if err := s.r.ShiftQueueAfter(ctx, tx, bookID, *next.QueuePosition); err != nil {
			return err
		}
	}
	metrics.QueuePromotions.Inc()
	return nil
}

func (s *service) decline(ctx context.Context, tx *sqlx.Tx, req *model.RentalRequest) error {
	if req.Status.Terminal() {
		return apperrors.InvalidTransition("rental request is already " + string(req.Status))
	}
	if err := s.r.MarkDeclined(ctx, tx, req.ID); err != nil {
		return err
	}
	if req.Status == model.RentalQueued && req.QueuePosition != nil {
		if err := s.r.ShiftQueueAfter(ctx, tx, req.BookID, *req.QueuePosition); err != nil {
			return err
		}
	}
	req.Status = model.RentalDeclined
	req.QueuePosition = nil
	return nil
}

func (s *service) List(ctx context.Context, readerID, status string) ([]model.RentalRequest, error) {
	return s.r.List(ctx, readerID, status)
}

func (s *service) Queue(ctx context.Context, bookID string) ([]model.QueueEntry, error) {
	return s.r.ListQueue(ctx, bookID)
}
