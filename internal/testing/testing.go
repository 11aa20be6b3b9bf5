// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/cloudsign/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MockCloud is a test double for [models.CloudClient]. Every field is optional; unset hooks succeed with zero values.
// Calls are counted per method and are safe for concurrent use.
type MockCloud struct {
	Username string

	LoginFn          func(ctx context.Context) error
	UserSignFn       func(ctx context.Context) (models.SignInOutcome, error)
	FamilyListFn     func(ctx context.Context) ([]models.Family, error)
	FamilyUserSignFn func(ctx context.Context, familyID string) (models.SignInOutcome, error)
	UserSizeInfoFn   func(ctx context.Context) (models.CapacitySnapshot, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockCloud) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
}

// Calls returns how many times the named method was called.
func (m *MockCloud) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockCloud) Login(ctx context.Context) error {
	m.record("Login")
	if m.LoginFn != nil {
		return m.LoginFn(ctx)
	}
	return nil
}

func (m *MockCloud) UserSign(ctx context.Context) (models.SignInOutcome, error) {
	m.record("UserSign")
	if m.UserSignFn != nil {
		return m.UserSignFn(ctx)
	}
	return models.SignInOutcome{}, nil
}

func (m *MockCloud) FamilyList(ctx context.Context) ([]models.Family, error) {
	m.record("FamilyList")
	if m.FamilyListFn != nil {
		return m.FamilyListFn(ctx)
	}
	return nil, nil
}

func (m *MockCloud) FamilyUserSign(ctx context.Context, familyID string) (models.SignInOutcome, error) {
	m.record("FamilyUserSign")
	if m.FamilyUserSignFn != nil {
		return m.FamilyUserSignFn(ctx, familyID)
	}
	return models.SignInOutcome{}, nil
}

func (m *MockCloud) UserSizeInfo(ctx context.Context) (models.CapacitySnapshot, error) {
	m.record("UserSizeInfo")
	if m.UserSizeInfoFn != nil {
		return m.UserSizeInfoFn(ctx)
	}
	return models.CapacitySnapshot{}, nil
}
