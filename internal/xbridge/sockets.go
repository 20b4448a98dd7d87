package xbridge

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listenAbstract binds a Linux abstract-namespace UNIX socket, i.e. one
// with no filesystem entry: the address's first byte is NUL and the kernel
// namespaces it by the remaining bytes, exactly like a real Xorg/Xwayland
// display socket. net.Listen("unix", ...) can't express a leading NUL in
// its address string, so this goes through golang.org/x/sys/unix directly,
// needed for the raw syscalls net.Listen can't express.
func listenAbstract(n int) (*net.UnixListener, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("xbridge: socket(AF_UNIX): %w", err)
	}

	name := abstractSocketPath(n)
	addr := &unix.SockaddrUnix{Name: "\x00" + name}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("xbridge: bind abstract socket @%s: %w", name, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("xbridge: listen abstract socket @%s: %w", name, err)
	}

	f := os.NewFile(uintptr(fd), "@"+name)
	defer f.Close()
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("xbridge: FileListener(@%s): %w", name, err)
	}
	unixLn, ok := ln.(*net.UnixListener)
	if !ok {
		ln.Close()
		return nil, fmt.Errorf("xbridge: @%s did not yield a UnixListener", name)
	}
	return unixLn, nil
}

// listenFilesystem binds the ordinary filesystem-path twin of the same
// display socket, removing any stale entry first (the lockfile scan in
// lockfile.go already established that display N is genuinely free).
func listenFilesystem(n int) (*net.UnixListener, error) {
	path := abstractSocketPath(n)
	os.Remove(path)
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("xbridge: bind filesystem socket %s: %w", path, err)
	}
	return ln, nil
}

// DisplaySockets is both listening ends of display N, bound and listening
// but with no connections accepted yet.
type DisplaySockets struct {
	N          int
	Abstract   *net.UnixListener
	Filesystem *net.UnixListener
}

func BindDisplaySockets(n int) (*DisplaySockets, error) {
	abstract, err := listenAbstract(n)
	if err != nil {
		return nil, err
	}
	fsLn, err := listenFilesystem(n)
	if err != nil {
		abstract.Close()
		return nil, err
	}
	return &DisplaySockets{N: n, Abstract: abstract, Filesystem: fsLn}, nil
}

// Close tears down both listeners and removes the filesystem socket node.
func (d *DisplaySockets) Close() {
	if d.Abstract != nil {
		d.Abstract.Close()
	}
	if d.Filesystem != nil {
		d.Filesystem.Close()
		os.Remove(abstractSocketPath(d.N))
	}
}

// clearCloexec strips FD_CLOEXEC from fd so it survives into a child
// across exec. It has no caller in this module: the WAYLAND_SOCKET end
// handed to the X server goes through exec.Cmd.ExtraFiles, which already
// passes dup'd, non-cloexec descriptors.
func clearCloexec(fd int) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return fmt.Errorf("xbridge: fcntl F_GETFD: %w", err)
	}
	_, err = unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags&^unix.FD_CLOEXEC)
	if err != nil {
		return fmt.Errorf("xbridge: fcntl F_SETFD clear cloexec: %w", err)
	}
	return nil
}

// socketpair opens a connected pair of UNIX stream sockets, returned as
// *os.File so one end can be handed straight to exec.Cmd.ExtraFiles.
func socketpair() (a, b *os.File, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("xbridge: socketpair: %w", err)
	}
	a = os.NewFile(uintptr(fds[0]), "socketpair-a")
	b = os.NewFile(uintptr(fds[1]), "socketpair-b")
	return a, b, nil
}
