package cache

import (
	"context"
	"time"

	"KnocksterSafety/storage/redis"
)

// 基于 SetNX 的跨进程运行锁：
// 同一个分钟级任务的重叠触发（进程内或多副本）拿不到锁就直接跳过本轮，
// 幂等的存在性检查保证漏掉的条目会被下一轮补上

const lockPrefix = "lock"

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()

	if err != nil {
		return false, err
	}

	return result, err
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}

// RunLocker 把包级锁函数适配成调度任务依赖的接口
type RunLocker struct{}

func (RunLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return TryLock(ctx, key, ttl)
}

func (RunLocker) Unlock(ctx context.Context, key string) error {
	return Unlock(ctx, key)
}
