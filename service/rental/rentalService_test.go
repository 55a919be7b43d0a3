package rental

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
)

// fakeStore keeps books, rental requests and readers in memory and applies
// the same mutations the SQL repository would. Transactions are a no-op: the
// callback simply runs against the shared state.
type fakeStore struct {
	books   map[string]bool // book id -> available
	rentals map[string]*model.RentalRequest
	readers map[string]string // phone -> reader id
	created int               // readers inserted by CreateFromRenter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:   map[string]bool{},
		rentals: map[string]*model.RentalRequest{},
		readers: map[string]string{},
	}
}

var _ Repo = (*fakeStore)(nil)
var _ ReaderRepo = (*fakeStore)(nil)

func (f *fakeStore) ExecuteTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (f *fakeStore) GetBookForUpdate(ctx context.Context, tx *sqlx.Tx, bookID string) (bool, error) {
	available, ok := f.books[bookID]
	if !ok {
		return false, sql.ErrNoRows
	}
	return available, nil
}

func (f *fakeStore) SetBookAvailable(ctx context.Context, tx *sqlx.Tx, bookID string, available bool) error {
	f.books[bookID] = available
	return nil
}

func (f *fakeStore) Insert(ctx context.Context, tx *sqlx.Tx, r *model.RentalRequest) error {
	r.RequestedAt = time.Now().UTC()
	cp := *r
	f.rentals[r.ID] = &cp
	return nil
}

func (f *fakeStore) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.RentalRequest, error) {
	r, ok := f.rentals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) MarkApproved(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error {
	r := f.rentals[id]
	r.Status = model.RentalApproved
	r.ApprovedAt = &at
	r.QueuePosition = nil
	return nil
}

func (f *fakeStore) MarkReturned(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error {
	r := f.rentals[id]
	r.Status = model.RentalReturned
	r.ReturnDate = &at
	return nil
}

func (f *fakeStore) MarkDeclined(ctx context.Context, tx *sqlx.Tx, id string) error {
	r := f.rentals[id]
	r.Status = model.RentalDeclined
	r.QueuePosition = nil
	return nil
}

func (f *fakeStore) MaxQueuePosition(ctx context.Context, tx *sqlx.Tx, bookID string) (int, error) {
	max := 0
	for _, r := range f.rentals {
		if r.BookID == bookID && r.Status == model.RentalQueued && r.QueuePosition != nil && *r.QueuePosition > max {
			max = *r.QueuePosition
		}
	}
	return max, nil
}

func (f *fakeStore) NextInQueue(ctx context.Context, tx *sqlx.Tx, bookID string) (*model.RentalRequest, error) {
	var next *model.RentalRequest
	for _, r := range f.rentals {
		if r.BookID != bookID || r.Status != model.RentalQueued || r.QueuePosition == nil {
			continue
		}
		if next == nil || *r.QueuePosition < *next.QueuePosition {
			next = r
		}
	}
	if next == nil {
		return nil, sql.ErrNoRows
	}
	cp := *next
	return &cp, nil
}

func (f *fakeStore) PromoteToPending(ctx context.Context, tx *sqlx.Tx, id string) error {
	r := f.rentals[id]
	r.Status = model.RentalPending
	r.QueuePosition = nil
	return nil
}

func (f *fakeStore) ShiftQueueAfter(ctx context.Context, tx *sqlx.Tx, bookID string, position int) error {
	for _, r := range f.rentals {
		if r.BookID == bookID && r.Status == model.RentalQueued && r.QueuePosition != nil && *r.QueuePosition > position {
			*r.QueuePosition--
		}
	}
	return nil
}

func (f *fakeStore) List(ctx context.Context, readerID, status string) ([]model.RentalRequest, error) {
	out := []model.RentalRequest{}
	for _, r := range f.rentals {
		if readerID != "" && (r.ReaderID == nil || *r.ReaderID != readerID) {
			continue
		}
		if status != "" && string(r.Status) != status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeStore) ListQueue(ctx context.Context, bookID string) ([]model.QueueEntry, error) {
	out := []model.QueueEntry{}
	for _, r := range f.rentals {
		if r.BookID == bookID && r.Status == model.RentalQueued && r.QueuePosition != nil {
			out = append(out, model.QueueEntry{
				ID:            r.ID,
				RenterName:    r.RenterName,
				QueuePosition: *r.QueuePosition,
				RequestedAt:   r.RequestedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueuePosition < out[j].QueuePosition })
	return out, nil
}

func (f *fakeStore) FindIDByPhone(ctx context.Context, tx *sqlx.Tx, phone string) (string, error) {
	return f.readers[phone], nil
}

func (f *fakeStore) CreateFromRenter(ctx context.Context, tx *sqlx.Tx, name, surname, phone string) (string, error) {
	id := uuid.NewString()
	f.readers[phone] = id
	f.created++
	return id, nil
}

// checkInvariants asserts the availability and queue invariants for every
// book: at most one approved request, never available while one exists,
// queued positions exactly {1..N}, nil positions everywhere else. A book may
// be unavailable with no approved request while a promoted head awaits
// approval, so that direction is not asserted.
func (f *fakeStore) checkInvariants(t *testing.T) {
	t.Helper()
	for bookID, available := range f.books {
		approved := 0
		positions := []int{}
		for _, r := range f.rentals {
			if r.BookID != bookID {
				continue
			}
			switch r.Status {
			case model.RentalApproved:
				approved++
				require.Nil(t, r.QueuePosition)
			case model.RentalQueued:
				require.NotNil(t, r.QueuePosition)
				positions = append(positions, *r.QueuePosition)
			default:
				require.Nil(t, r.QueuePosition)
			}
		}
		require.LessOrEqual(t, approved, 1, "book %s has %d approved requests", bookID, approved)
		if approved > 0 {
			require.False(t, available, "book %s available while on loan", bookID)
		}
		sort.Ints(positions)
		for i, p := range positions {
			require.Equal(t, i+1, p, "book %s queue positions not contiguous: %v", bookID, positions)
		}
	}
}

func newTestService(f *fakeStore) Service {
	return New(f, f, slog.New(slog.DiscardHandler))
}

func input(bookID string) CreateInput {
	return CreateInput{
		BookID:         bookID,
		BookTitle:      "Лісова пісня",
		RenterName:     "Оксана Петренко",
		RenterPhone:    "+380501112233",
		RentalDuration: "2_weeks",
	}
}

func TestCreate_PendingOnAvailableBook(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	req, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)
	require.Equal(t, model.RentalPending, req.Status)
	require.Nil(t, req.QueuePosition)
	require.True(t, f.books["b1"], "pending request must not consume availability")
	f.checkInvariants(t)
}

func TestCreate_MultiplePendingAllowed(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	for i := 0; i < 3; i++ {
		req, err := svc.Create(context.Background(), input("b1"))
		require.NoError(t, err)
		require.Equal(t, model.RentalPending, req.Status)
	}
	require.True(t, f.books["b1"])
	f.checkInvariants(t)
}

func TestCreate_AutoApprove(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	in := input("b1")
	in.AutoApprove = true
	req, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, model.RentalApproved, req.Status)
	require.NotNil(t, req.ApprovedAt)
	require.False(t, f.books["b1"])
	f.checkInvariants(t)
}

func TestCreate_AutoApproveIgnoredWhenUnavailable(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = false
	svc := newTestService(f)

	in := input("b1")
	in.AutoApprove = true
	req, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, model.RentalQueued, req.Status)
	f.checkInvariants(t)
}

func TestCreate_QueuedFIFO(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = false
	svc := newTestService(f)

	first, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)

	require.Equal(t, model.RentalQueued, first.Status)
	require.Equal(t, 1, *first.QueuePosition)
	require.Equal(t, 2, *second.QueuePosition)
	f.checkInvariants(t)
}

func TestCreate_MissingFieldRejected(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	in := input("b1")
	in.RenterPhone = ""
	_, err := svc.Create(context.Background(), in)
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))
	require.Empty(t, f.rentals)
}

func TestCreate_UnknownBook(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	_, err := svc.Create(context.Background(), input("missing"))
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestReaderResolution(t *testing.T) {
	t.Run("explicit id used verbatim", func(t *testing.T) {
		f := newFakeStore()
		f.books["b1"] = true
		svc := newTestService(f)

		rid := "reader-42"
		in := input("b1")
		in.ReaderID = &rid
		req, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, "reader-42", *req.ReaderID)
		require.Zero(t, f.created)
	})

	t.Run("phone match reuses reader", func(t *testing.T) {
		f := newFakeStore()
		f.books["b1"] = true
		f.readers["+380501112233"] = "existing"
		svc := newTestService(f)

		req, err := svc.Create(context.Background(), input("b1"))
		require.NoError(t, err)
		require.Equal(t, "existing", *req.ReaderID)
		require.Zero(t, f.created)
	})

	t.Run("miss creates one reader", func(t *testing.T) {
		f := newFakeStore()
		f.books["b1"] = true
		svc := newTestService(f)

		req, err := svc.Create(context.Background(), input("b1"))
		require.NoError(t, err)
		require.NotNil(t, req.ReaderID)
		require.Equal(t, 1, f.created)

		// Second request with the same phone reuses the new reader.
		req2, err := svc.Create(context.Background(), input("b1"))
		require.NoError(t, err)
		require.Equal(t, *req.ReaderID, *req2.ReaderID)
		require.Equal(t, 1, f.created)
	})
}

func TestSplitRenterName(t *testing.T) {
	cases := []struct {
		full, name, surname string
	}{
		{"Оксана Петренко", "Оксана", "Петренко"},
		{"Анна Марія Коваль", "Анна Марія", "Коваль"},
		{"Мадонна", "Мадонна", "Мадонна"},
		{"  Іван Франко  ", "Іван", "Франко"},
	}
	for _, c := range cases {
		name, surname := splitRenterName(c.full)
		require.Equal(t, c.name, name)
		require.Equal(t, c.surname, surname)
	}
}

func TestSetStatus_ApprovePending(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	req, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)

	approved, err := svc.SetStatus(context.Background(), req.ID, model.RentalApproved)
	require.NoError(t, err)
	require.Equal(t, model.RentalApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	require.False(t, f.books["b1"])
	f.checkInvariants(t)
}

func TestSetStatus_ReturnPromotesHead(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	loan, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), loan.ID, model.RentalApproved)
	require.NoError(t, err)

	waiting, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)
	require.Equal(t, model.RentalQueued, waiting.Status)

	returned, err := svc.SetStatus(context.Background(), loan.ID, model.RentalReturned)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	// The promoted request is pending again and the book stays unavailable
	// until an admin approves it.
	promoted := f.rentals[waiting.ID]
	require.Equal(t, model.RentalPending, promoted.Status)
	require.Nil(t, promoted.QueuePosition)
	require.False(t, f.books["b1"])
}

func TestSetStatus_ReturnReleasesWhenQueueEmpty(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	in := input("b1")
	in.AutoApprove = true
	loan, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), loan.ID, model.RentalReturned)
	require.NoError(t, err)
	require.True(t, f.books["b1"])
	f.checkInvariants(t)
}

func TestSetStatus_ReturnRequiresApproved(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	req, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), req.ID, model.RentalReturned)
	require.True(t, apperrors.Is(err, apperrors.CodeInvalidTransition))
	require.Equal(t, model.RentalPending, f.rentals[req.ID].Status)
}

func TestSetStatus_DeclineQueuedClosesGap(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = false
	svc := newTestService(f)

	first, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), first.ID, model.RentalDeclined)
	require.NoError(t, err)

	require.Equal(t, model.RentalDeclined, f.rentals[first.ID].Status)
	require.Nil(t, f.rentals[first.ID].QueuePosition)
	require.Equal(t, 1, *f.rentals[second.ID].QueuePosition)
	f.checkInvariants(t)
}

func TestSetStatus_DeclineNeverTouchesAvailability(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	req, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), req.ID, model.RentalDeclined)
	require.NoError(t, err)
	require.True(t, f.books["b1"])
}

func TestSetStatus_TerminalRejectsDecline(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	req, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), req.ID, model.RentalDeclined)
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), req.ID, model.RentalDeclined)
	require.True(t, apperrors.Is(err, apperrors.CodeInvalidTransition))
}

// Approve accepts any source status, including terminal ones. Admins rely on
// this to resurrect a declined request.
func TestSetStatus_ApproveFromDeclinedAllowed(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	svc := newTestService(f)

	req, err := svc.Create(context.Background(), input("b1"))
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), req.ID, model.RentalDeclined)
	require.NoError(t, err)

	approved, err := svc.SetStatus(context.Background(), req.ID, model.RentalApproved)
	require.NoError(t, err)
	require.Equal(t, model.RentalApproved, approved.Status)
	require.False(t, f.books["b1"])
}

func TestSetStatus_UnknownTarget(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	_, err := svc.SetStatus(context.Background(), "any", model.RentalStatus("archived"))
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = svc.SetStatus(context.Background(), "any", model.RentalPending)
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestSetStatus_UnknownRequest(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	_, err := svc.SetStatus(context.Background(), "missing", model.RentalApproved)
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

// Long mixed sequence: every intermediate state must satisfy the
// availability and queue invariants, and promotion must stay FIFO.
func TestInvariants_MixedSequence(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = true
	f.books["b2"] = true
	svc := newTestService(f)
	ctx := context.Background()

	in := input("b1")
	in.AutoApprove = true
	loan, err := svc.Create(ctx, in)
	require.NoError(t, err)
	f.checkInvariants(t)

	var queued []*model.RentalRequest
	for i := 0; i < 4; i++ {
		r, err := svc.Create(ctx, input("b1"))
		require.NoError(t, err)
		require.Equal(t, model.RentalQueued, r.Status)
		queued = append(queued, r)
		f.checkInvariants(t)
	}

	// Independent book: operations on b2 never disturb b1's queue.
	other, err := svc.Create(ctx, input("b2"))
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, other.ID, model.RentalApproved)
	require.NoError(t, err)
	f.checkInvariants(t)

	// Decline the middle of the queue, then return the loan: the earliest
	// surviving entry must be the one promoted.
	_, err = svc.SetStatus(ctx, queued[1].ID, model.RentalDeclined)
	require.NoError(t, err)
	f.checkInvariants(t)

	_, err = svc.SetStatus(ctx, loan.ID, model.RentalReturned)
	require.NoError(t, err)
	f.checkInvariants(t)
	require.Equal(t, model.RentalPending, f.rentals[queued[0].ID].Status)
	require.Equal(t, model.RentalQueued, f.rentals[queued[2].ID].Status)
	require.Equal(t, 1, *f.rentals[queued[2].ID].QueuePosition)

	// Approve the promoted head, return it, and the next in line surfaces.
	_, err = svc.SetStatus(ctx, queued[0].ID, model.RentalApproved)
	require.NoError(t, err)
	f.checkInvariants(t)
	_, err = svc.SetStatus(ctx, queued[0].ID, model.RentalReturned)
	require.NoError(t, err)
	f.checkInvariants(t)
	require.Equal(t, model.RentalPending, f.rentals[queued[2].ID].Status)

	// Drain the rest of the waitlist.
	_, err = svc.SetStatus(ctx, queued[3].ID, model.RentalDeclined)
	require.NoError(t, err)
	f.checkInvariants(t)

	entries, err := svc.Queue(ctx, "b1")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestQueueListing_OrderedByPosition(t *testing.T) {
	f := newFakeStore()
	f.books["b1"] = false
	svc := newTestService(f)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, input("b1"))
		require.NoError(t, err)
	}
	entries, err := svc.Queue(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		require.Equal(t, i+1, e.QueuePosition)
	}
}
