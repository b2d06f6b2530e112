package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/backend/internal/model"
)

func TestIssueAndSendReturnsSixDigitCode(t *testing.T) {
	store := newMemStore()
	mail := &fakeMailer{}
	svc := NewVerificationService(store, mail)

	code, err := svc.IssueAndSend(context.Background(), "alice@example.com", model.PurposeEmailVerification)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
	assert.Equal(t, 1, mail.sentCount())
}

func TestIssueInvalidatesPriorCodesForSamePurposeOnly(t *testing.T) {
	store := newMemStore()
	svc := NewVerificationService(store, &fakeMailer{})
	ctx := context.Background()

	_, err := svc.IssueAndSend(ctx, "alice@example.com", model.PurposeEmailVerification)
	require.NoError(t, err)
	_, err = svc.IssueAndSend(ctx, "alice@example.com", model.PurposePasswordReset)
	require.NoError(t, err)
	_, err = svc.IssueAndSend(ctx, "bob@example.com", model.PurposeEmailVerification)
	require.NoError(t, err)

	// Reissue for (alice, email_verification).
	_, err = svc.IssueAndSend(ctx, "alice@example.com", model.PurposeEmailVerification)
	require.NoError(t, err)

	assert.Len(t, store.liveCodes("alice@example.com", model.PurposeEmailVerification), 1)
	assert.Len(t, store.liveCodes("alice@example.com", model.PurposePasswordReset), 1)
	assert.Len(t, store.liveCodes("bob@example.com", model.PurposeEmailVerification), 1)
}

func TestVerifyIsSingleUse(t *testing.T) {
	store := newMemStore()
	svc := NewVerificationService(store, &fakeMailer{})
	ctx := context.Background()

	code, err := svc.IssueAndSend(ctx, "alice@example.com", model.PurposePasswordReset)
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "alice@example.com", code, model.PurposePasswordReset)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, "alice@example.com", code, model.PurposePasswordReset)
	require.NoError(t, err)
	assert.False(t, ok, "second verification of the same code must fail")
}

func TestVerifyRejectsWrongPurpose(t *testing.T) {
	store := newMemStore()
	svc := NewVerificationService(store, &fakeMailer{})
	ctx := context.Background()

	code, err := svc.IssueAndSend(ctx, "alice@example.com", model.PurposeEmailVerification)
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "alice@example.com", code, model.PurposePasswordReset)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsExpiredCode(t *testing.T) {
	store := newMemStore()
	svc := NewVerificationService(store, &fakeMailer{})
	ctx := context.Background()

	code, err := svc.IssueAndSend(ctx, "alice@example.com", model.PurposeEmailVerification)
	require.NoError(t, err)

	// Age the stored code past its expiry.
	store.mu.Lock()
	for _, record := range store.codes {
		record.ExpiresAt = time.Now().Add(-time.Second)
	}
	store.mu.Unlock()

	ok, err := svc.Verify(ctx, "alice@example.com", code, model.PurposeEmailVerification)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIssueSucceedsWhenMailerFails(t *testing.T) {
	store := newMemStore()
	mail := &fakeMailer{err: errors.New("smtp down")}
	svc := NewVerificationService(store, mail)

	code, err := svc.IssueAndSend(context.Background(), "alice@example.com", model.PurposeEmailVerification)
	require.NoError(t, err, "mailer failure must not fail issuance")

	ok, err := svc.Verify(context.Background(), "alice@example.com", code, model.PurposeEmailVerification)
	require.NoError(t, err)
	assert.True(t, ok, "code stays valid even when delivery failed")
}

func TestIssueRejectsUnknownPurpose(t *testing.T) {
	svc := NewVerificationService(newMemStore(), &fakeMailer{})

	_, err := svc.IssueAndSend(context.Background(), "alice@example.com", model.CodePurpose("mystery"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConcurrentVerifyConsumesExactlyOnce(t *testing.T) {
	store := newMemStore()
	svc := NewVerificationService(store, &fakeMailer{})
	ctx := context.Background()

	code, err := svc.IssueAndSend(ctx, "alice@example.com", model.PurposeEmailVerification)
	require.NoError(t, err)

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.Verify(ctx, "alice@example.com", code, model.PurposeEmailVerification)
			assert.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for ok := range results {
		if ok {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent verify may succeed")
}
