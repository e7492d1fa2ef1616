package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutation_DoReturnsResponse(t *testing.T) {
	createWallet := New("createWallet", func(ctx context.Context, currency string) (string, error) {
		return "wallet:" + currency, nil
	})

	resp, err := createWallet.Do(context.Background(), "NGN")

	require.NoError(t, err)
	assert.Equal(t, "wallet:NGN", resp)
	assert.Equal(t, "createWallet", createWallet.Name())
}

func TestMutation_SuccessHooksRunInOrder(t *testing.T) {
	var order []string
	confirm := New("confirm", func(ctx context.Context, req string) (string, error) {
		return "ok", nil
	}).OnSuccess(func(req, resp string) {
		order = append(order, "first")
	}).OnSuccess(func(req, resp string) {
		order = append(order, "second")
	})

	_, err := confirm.Do(context.Background(), "ref")

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestMutation_SuccessHooksSkippedOnFailure(t *testing.T) {
	callError := errors.New("rejected")
	var successRan, errorRan bool
	confirm := New("confirm", func(ctx context.Context, req string) (string, error) {
		return "", callError
	}).OnSuccess(func(req, resp string) {
		successRan = true
	}).OnError(func(req string, err error) {
		errorRan = true
		assert.Equal(t, callError, err)
	})

	_, err := confirm.Do(context.Background(), "ref")

	assert.ErrorIs(t, err, callError)
	assert.False(t, successRan, "invalidation must not run for a rejected write")
	assert.True(t, errorRan)
}

func TestMutation_DuplicateSubmissionRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slow := New("slow", func(ctx context.Context, req string) (string, error) {
		close(started)
		<-release
		return "done", nil
	})

	var waitGroup sync.WaitGroup
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		resp, err := slow.Do(context.Background(), "first")
		assert.NoError(t, err)
		assert.Equal(t, "done", resp)
	}()

	<-started
	assert.True(t, slow.Pending())

	_, err := slow.Do(context.Background(), "second")
	assert.ErrorIs(t, err, ErrInFlight)

	close(release)
	waitGroup.Wait()
	assert.False(t, slow.Pending())
}

func TestMutation_PendingClearsAfterFailure(t *testing.T) {
	failing := New("failing", func(ctx context.Context, req string) (string, error) {
		return "", errors.New("boom")
	})

	_, err := failing.Do(context.Background(), "req")
	require.Error(t, err)

	assert.False(t, failing.Pending())

	// The mutation accepts a fresh submission after the failure clears.
	done := make(chan struct{})
	go func() {
		failing.Do(context.Background(), "retry")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("retry after failure never ran")
	}
}
