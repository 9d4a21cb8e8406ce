package infra

import (
	"context"
	"os"
	"testing"
)

func TestNewDB_RejectsMalformedDSN(t *testing.T) {
	if _, err := NewDB(context.Background(), "postgres://%zz"); err == nil {
		t.Fatal("expected error for malformed dsn")
	}
}

func TestNewDB_Connects(t *testing.T) {
	dsn := os.Getenv("MATASAA_TEST_DSN")
	if dsn == "" {
		t.Skip("MATASAA_TEST_DSN not set")
	}
	pool, err := NewDB(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	pool.Close()
}

func TestNewRedis_Connects(t *testing.T) {
	addr := os.Getenv("MATASAA_TEST_REDIS")
	if addr == "" {
		t.Skip("MATASAA_TEST_REDIS not set")
	}
	client, err := NewRedis(context.Background(), addr)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	_ = client.Close()
}
