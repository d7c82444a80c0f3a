package redislock_test

import (
	"context"
	"testing"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/redislock"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type LockerIntegrationTestSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
}

func (suite *LockerIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	suite.Require().NoError(err)
	suite.container = container

	endpoint, err := container.Endpoint(ctx, "")
	suite.Require().NoError(err)
	suite.client = redis.NewClient(&redis.Options{Addr: endpoint})
}

func (suite *LockerIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushAll(context.Background()).Err())
}

func (suite *LockerIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		_ = suite.client.Close()
	}
	if suite.container != nil {
		suite.Require().NoError(testcontainers.TerminateContainer(suite.container))
	}
}

func (suite *LockerIntegrationTestSuite) TestLock_SecondCallerWaitsForRelease() {
	locker, err := redislock.NewLocker(suite.client, time.Minute, nil)
	suite.Require().NoError(err)
	id := kernel.NewUUID()

	unlock, err := locker.Lock(context.Background(), id)
	suite.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, id)
	suite.Require().ErrorIs(err, context.DeadlineExceeded)

	unlock()

	again, err := locker.Lock(context.Background(), id)
	suite.Require().NoError(err)
	again()
}

func (suite *LockerIntegrationTestSuite) TestLock_HeldPastTTLIsRenewed() {
	locker, err := redislock.NewLocker(suite.client, 300*time.Millisecond, nil)
	suite.Require().NoError(err)
	id := kernel.NewUUID()

	unlock, err := locker.Lock(context.Background(), id)
	suite.Require().NoError(err)

	time.Sleep(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, id)
	suite.Require().ErrorIs(err, context.DeadlineExceeded)

	unlock()
	suite.Empty(suite.lockKeys(id))
}

func (suite *LockerIntegrationTestSuite) TestLock_LostLeaseIsNotReleasedByOldHolder() {
	locker, err := redislock.NewLocker(suite.client, time.Minute, nil)
	suite.Require().NoError(err)
	id := kernel.NewUUID()

	staleUnlock, err := locker.Lock(context.Background(), id)
	suite.Require().NoError(err)

	// The lease vanishes under the holder, as after a redis failover.
	keys := suite.lockKeys(id)
	suite.Require().Len(keys, 1)
	suite.Require().NoError(suite.client.Del(context.Background(), keys...).Err())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	freshUnlock, err := locker.Lock(ctx, id)
	suite.Require().NoError(err)

	// The old holder's token no longer matches, so its release leaves the new lease alone.
	staleUnlock()
	suite.Len(suite.lockKeys(id), 1)

	freshUnlock()
	suite.Empty(suite.lockKeys(id))
}

func (suite *LockerIntegrationTestSuite) lockKeys(id kernel.UUID) []string {
	keys, err := suite.client.Keys(context.Background(), "*"+id.String()).Result()
	suite.Require().NoError(err)
	return keys
}

func TestLockerIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	suite.Run(t, new(LockerIntegrationTestSuite))
}
