package shell

import "github.com/andr2000/weston-shell/internal/model"

// HelperBinder is the desktop_shell interface, bound only by the trusted
// helper client; BindDesktopShell refuses every other client.
type HelperBinder struct {
	shell *Shell
}

// BindDesktopShell implements the desktop_shell global's bind callback.
func (s *Shell) BindDesktopShell(client model.Client) (*HelperBinder, error) {
	if client == nil || !client.IsHelper() {
		return nil, ErrPermissionDenied
	}
	return &HelperBinder{shell: s}, nil
}

// SetBackground implements desktop_shell.set_background(output, surface).
func (h *HelperBinder) SetBackground(surf *model.Surface) {
	h.shell.Policy.Background.Set(surf)
}

// SetPanel implements desktop_shell.set_panel(output, surface).
func (h *HelperBinder) SetPanel(surf *model.Surface) {
	h.shell.Policy.Panel.Set(surf)
}

// SetLockSurface implements desktop_shell.set_lock_surface(surface).
func (h *HelperBinder) SetLockSurface(surf *model.Surface) {
	h.shell.Lock.SetLockSurface(surf)
}

// Unlock implements desktop_shell.unlock(): the helper confirming the lock
// surface has been torn down and the desktop can be restored.
func (h *HelperBinder) Unlock(devicePick func()) {
	h.shell.Lock.ResumeDesktop(devicePick)
}
