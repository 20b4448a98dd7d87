//go:build linux

package xbridge

import "syscall"

const rlimitNoFile = syscall.RLIMIT_NOFILE
