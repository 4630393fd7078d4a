//go:build nodebug

package core

const debugChecks = false
