package utils

import "sync"

// GDAL handles are not safe to share between goroutines; every godal call in the
// module goes through this lock.
var mu sync.Mutex

func ExecuteWithMutex(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	fn()
}
