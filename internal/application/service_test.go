package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"marketdata-gateway/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func quote(cur domain.Currency, bid, ask string) domain.FxQuote {
	return domain.FxQuote{
		Currency: cur,
		Bid:      decimal.RequireFromString(bid),
		Ask:      decimal.RequireFromString(ask),
	}
}

func Test_Process_StoresOnSuccess(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	svc := NewGatewayService(&fakeValidator{}, st)
	q := quote(domain.CurrencyEUR, "1.0", "1.0")

	res, err := svc.Process(context.Background(), q)
	require.NoError(t, err)
	require.True(t, res.IsSuccessful)

	id, err := uuid.Parse(res.ID)
	require.NoError(t, err)
	got, ok := svc.Retrieve(context.Background(), id)
	require.True(t, ok)
	require.Equal(t, q, got)
	require.Equal(t, 1, st.upserts)
}

func Test_Process_FailureDoesNotStore(t *testing.T) {
	t.Parallel()
	id := uuid.New()
	st := newFakeStore()
	v := &fakeValidator{out: &domain.ValidationResult{ID: id.String(), IsSuccessful: false}}
	svc := NewGatewayService(v, st)

	res, err := svc.Process(context.Background(), quote(domain.CurrencyUSD, "1.1", "1.2"))
	require.NoError(t, err)
	require.False(t, res.IsSuccessful)
	require.Equal(t, id.String(), res.ID)

	_, ok := svc.Retrieve(context.Background(), id)
	require.False(t, ok)
	require.Zero(t, st.upserts)
}

func Test_Process_ValidatorError(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	svc := NewGatewayService(&fakeValidator{err: ErrValidator}, st)

	_, err := svc.Process(context.Background(), quote(domain.CurrencyUSD, "1", "2"))
	require.ErrorIs(t, err, ErrValidator)
	require.Zero(t, st.upserts)
}

func Test_Process_SuccessWithMalformedIdentifier(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	v := &fakeValidator{out: &domain.ValidationResult{ID: "some-id", IsSuccessful: true}}
	svc := NewGatewayService(v, st)

	_, err := svc.Process(context.Background(), quote(domain.CurrencyUSD, "1", "2"))
	require.ErrorIs(t, err, ErrInvalidIdentifier)
	require.Zero(t, st.upserts)
}

func Test_Process_CancelReachesValidator(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	v := &fakeValidator{blockC: make(chan struct{})}
	svc := NewGatewayService(v, st)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Process(ctx, quote(domain.CurrencyUSD, "1", "2"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Zero(t, st.upserts)
}

func Test_Retrieve_UnknownAndRepeated(t *testing.T) {
	t.Parallel()
	svc := NewGatewayService(&fakeValidator{}, newFakeStore())

	_, ok := svc.Retrieve(context.Background(), uuid.New())
	require.False(t, ok)

	res, err := svc.Process(context.Background(), quote(domain.CurrencyJPY, "150.25", "150.30"))
	require.NoError(t, err)
	id := uuid.MustParse(res.ID)
	first, ok := svc.Retrieve(context.Background(), id)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := svc.Retrieve(context.Background(), id)
		require.True(t, ok)
		require.Equal(t, first, again)
	}
}

func Test_Process_Concurrent(t *testing.T) {
	t.Parallel()
	const n = 200
	svc := NewGatewayService(&fakeValidator{}, newFakeStore())

	quotes := make([]domain.FxQuote, n)
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		quotes[i] = quote(domain.CurrencyEUR, fmt.Sprintf("1.%04d", i), fmt.Sprintf("2.%04d", i))
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Process(context.Background(), quotes[i])
			if err == nil {
				ids[i] = res.ID
			}
		}(i)
	}
	wg.Wait()

	got := make([]domain.Contribution, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := uuid.Parse(ids[i])
			if err != nil {
				return
			}
			got[i], _ = svc.Retrieve(context.Background(), id)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NotEmpty(t, ids[i])
		require.False(t, seen[ids[i]], "duplicate id %s", ids[i])
		seen[ids[i]] = true
		require.Equal(t, quotes[i], got[i])
	}
}

func Test_Process_TracesStartAndEnd(t *testing.T) {
	t.Parallel()
	tr := &recordingTracer{}
	svc := NewGatewayService(&fakeValidator{}, newFakeStore(), WithTracer(tr))

	_, err := svc.Process(context.Background(), quote(domain.CurrencyCHF, "0.9", "0.91"))
	require.NoError(t, err)
	require.Equal(t, []string{"StartProcess", "EndProcess", "Stored"}, tr.events)
}
