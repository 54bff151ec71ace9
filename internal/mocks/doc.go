// Package mocks provides shared test doubles for the store, service and auth
// interfaces.
//
// Two flavours are offered. The Mock* types are hand-written fakes with
// optional function fields that override the default in-memory behaviour,
// which makes them usable both as stubs and as working backends for
// end-to-end router tests. UserStore is a testify/mock implementation for
// tests that assert on calls.
//
//	users := mocks.NewMockUserStore()
//	grams := mocks.NewMockGramRepository()
//	grams.UpdateFn = func(ctx context.Context, g *domain.Gram) error {
//	    return errors.New("boom")
//	}
package mocks
