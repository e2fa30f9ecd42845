package cache

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

// Redis and MongoDB tests need live servers; they are skipped unless
// RMD_TEST_REDIS_URL or RMD_TEST_MONGO_URI point at one.

func TestRedisStore(t *testing.T) {
	url := os.Getenv("RMD_TEST_REDIS_URL")
	if url == "" {
		t.Skip("RMD_TEST_REDIS_URL not set")
	}

	testStoreContract(t, true, func(t *testing.T, clock *fakeClock) Store {
		s, err := DialRedis(context.Background(), url, "rmdlink-test:"+uuid.NewString()+":")
		if err != nil {
			t.Fatalf("DialRedis error: %v", err)
		}
		s.now = clock.Now
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("RMD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("RMD_TEST_MONGO_URI not set")
	}

	testStoreContract(t, false, func(t *testing.T, clock *fakeClock) Store {
		s, err := DialMongo(context.Background(), uri, "rmdlink_test", "cache_"+uuid.NewString())
		if err != nil {
			t.Fatalf("DialMongo error: %v", err)
		}
		s.now = clock.Now
		t.Cleanup(func() {
			_ = s.coll.Drop(context.Background())
			s.Close()
		})
		return s
	})
}
