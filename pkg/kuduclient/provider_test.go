// Copyright (C) 2017 ScyllaDB

package kuduclient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arnaudpue/kudu/pkg/kuduclient"
)

type mockClient struct {
	kuduclient.Client
	closed bool
}

func (m *mockClient) Close() error {
	m.closed = true
	return nil
}

type mockProvider struct {
	client *mockClient
	err    error
	called bool
}

func (m *mockProvider) Client(ctx context.Context, masters []string) (kuduclient.Client, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.client, nil
}

func TestCachedProvider(t *testing.T) {
	t.Parallel()

	masters := []string{"master-0:7051", "master-1:7051"}
	m := mockProvider{}
	p := kuduclient.NewCachedProvider(m.Client)

	// Error
	m.err = errors.New("mock")

	_, err := p.Client(context.Background(), masters)
	if !m.called {
		t.Fatal("not called")
	}
	if err != m.err {
		t.Fatal(err)
	}

	// Success
	m.client = &mockClient{}
	m.err = nil
	m.called = false

	c, err := p.Client(context.Background(), masters)
	if !m.called {
		t.Fatal("not called")
	}
	if c != m.client {
		t.Fatal("wrong client")
	}
	if err != nil {
		t.Fatal(err)
	}

	// Cached
	m.called = false

	c, err = p.Client(context.Background(), masters)
	if m.called {
		t.Fatal("called")
	}
	if c != m.client {
		t.Fatal("wrong client")
	}
	if err != nil {
		t.Fatal(err)
	}

	// Different masters are not cached
	m.called = false

	if _, err := p.Client(context.Background(), []string{"master-9:7051"}); err != nil {
		t.Fatal(err)
	}
	if !m.called {
		t.Fatal("not called")
	}

	// Expired entries are replaced and the old client closed
	p.SetValidity(0)
	stale := m.client
	m.client = &mockClient{}
	m.called = false

	c, err = p.Client(context.Background(), masters)
	if !m.called {
		t.Fatal("not called")
	}
	if c != m.client {
		t.Fatal("wrong client")
	}
	if err != nil {
		t.Fatal(err)
	}
	if !stale.closed {
		t.Fatal("stale client not closed")
	}

	// Invalidate
	p.Invalidate(masters)
	m.called = false

	if _, err := p.Client(context.Background(), masters); err != nil {
		t.Fatal(err)
	}
	if !m.called {
		t.Fatal("not called")
	}
}
