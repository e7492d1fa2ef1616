package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_String(t *testing.T) {
	assert.Equal(t, "paymentSettings/methods", PaymentMethodsKey().String())
	assert.Equal(t, "paymentSettings/banks/NG/NGN", BanksKey("NG", "NGN").String())
	assert.Equal(t, "conversion/receipt/abc-123", ConversionReceiptKey("abc-123").String())
}

func TestKey_ParametersProduceDistinctKeys(t *testing.T) {
	assert.NotEqual(t, BanksKey("NG", "NGN").String(), BanksKey("KE", "KES").String())
	assert.NotEqual(t, ConversionReceiptKey("a").String(), TransferReceiptKey("a").String())
}

func TestQuery_ServesCachedDataWithoutRefetching(t *testing.T) {
	store := NewStore()
	var fetchCount int32
	balancesQuery := New(store, BalancesKey(), func(ctx context.Context) (string, error) {
		atomic.AddInt32(&fetchCount, 1)
		return "balances", nil
	})

	for i := 0; i < 3; i++ {
		data, err := balancesQuery.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "balances", data)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetchCount), "fresh data is never refetched")
}

func TestQuery_RefetchBypassesCache(t *testing.T) {
	store := NewStore()
	var fetchCount int32
	balancesQuery := New(store, BalancesKey(), func(ctx context.Context) (int32, error) {
		return atomic.AddInt32(&fetchCount, 1), nil
	})

	first, err := balancesQuery.Get(context.Background())
	require.NoError(t, err)
	second, err := balancesQuery.Refetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), first)
	assert.Equal(t, int32(2), second)
}

func TestQuery_InvalidationForcesRefetch(t *testing.T) {
	store := NewStore()
	var fetchCount int32
	methodsQuery := New(store, PaymentMethodsKey(), func(ctx context.Context) (string, error) {
		atomic.AddInt32(&fetchCount, 1)
		return "methods", nil
	})

	_, err := methodsQuery.Get(context.Background())
	require.NoError(t, err)

	store.InvalidateDomain(DomainPaymentSettings)

	_, err = methodsQuery.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetchCount))
}

func TestQuery_DomainInvalidationLeavesOtherDomainsAlone(t *testing.T) {
	store := NewStore()
	store.Set(PaymentMethodsKey(), "methods")
	store.Set(BalancesKey(), "balances")

	store.InvalidateDomain(DomainPaymentSettings)

	_, ok := store.Get(PaymentMethodsKey())
	assert.False(t, ok)
	cached, ok := store.Get(BalancesKey())
	require.True(t, ok)
	assert.Equal(t, "balances", cached)
}

func TestQuery_TTLExpiresEntries(t *testing.T) {
	store := NewStore()
	store.SetWithTTL(CountriesKey(), "countries", 10*time.Millisecond)

	cached, ok := store.Get(CountriesKey())
	require.True(t, ok)
	assert.Equal(t, "countries", cached)

	time.Sleep(20 * time.Millisecond)

	_, ok = store.Get(CountriesKey())
	assert.False(t, ok)
}

func TestQuery_DisabledQueryNeverFetches(t *testing.T) {
	store := NewStore()
	fetched := false
	enabled := false
	receiptQuery := New(store, ConversionReceiptKey("ref-1"), func(ctx context.Context) (string, error) {
		fetched = true
		return "receipt", nil
	}).WithEnabled(func() bool { return enabled })

	_, err := receiptQuery.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotEnabled)
	assert.False(t, fetched)

	enabled = true
	data, err := receiptQuery.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "receipt", data)
	assert.True(t, fetched)
}

func TestQuery_ConcurrentGetsCollapseIntoOneFetch(t *testing.T) {
	store := NewStore()
	var fetchCount int32
	release := make(chan struct{})
	slowQuery := New(store, BalancesKey(), func(ctx context.Context) (string, error) {
		atomic.AddInt32(&fetchCount, 1)
		<-release
		return "balances", nil
	})

	var waitGroup sync.WaitGroup
	for i := 0; i < 5; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			data, err := slowQuery.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "balances", data)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	waitGroup.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetchCount))
}

func TestQuery_FetchErrorIsNotCached(t *testing.T) {
	store := NewStore()
	var fetchCount int32
	fetchError := errors.New("upstream down")
	flakyQuery := New(store, BalancesKey(), func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&fetchCount, 1) == 1 {
			return "", fetchError
		}
		return "balances", nil
	})

	_, err := flakyQuery.Get(context.Background())
	assert.ErrorIs(t, err, fetchError)
	assert.True(t, flakyQuery.IsError())
	assert.Equal(t, fetchError, flakyQuery.LastError())

	data, err := flakyQuery.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "balances", data)
	assert.False(t, flakyQuery.IsError())
}

func TestStore_InvalidateAll(t *testing.T) {
	store := NewStore()
	store.Set(PaymentMethodsKey(), "methods")
	store.Set(BalancesKey(), "balances")

	store.InvalidateAll()

	_, ok := store.Get(PaymentMethodsKey())
	assert.False(t, ok)
	_, ok = store.Get(BalancesKey())
	assert.False(t, ok)
}
