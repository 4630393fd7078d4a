//go:build !tinygo

package core

import "sync/atomic"

var systemTicks atomic.Uint64

func loadTicks() uint64 {
	return systemTicks.Load()
}

func storeTicks(t uint64) {
	systemTicks.Store(t)
}

func addTick() uint64 {
	return systemTicks.Add(1)
}
