//go:build !nolog

package core

const logEnabled = true
