package session

import (
	"github.com/normen/obs-hui/gohui"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

// identityReply answers a device inquiry as a HUI: manufacturer 00 00 66,
// family 0x0005, member 0x0000, software 1.0.0.0.
var identityReply = midi.SysEx([]byte{
	0x7E, 0x00, 0x06, 0x02,
	0x00, 0x00, 0x66,
	0x05, 0x00,
	0x00, 0x00,
	0x01, 0x00, 0x00, 0x00,
})

// isDeviceInquiry matches the universal non-realtime device inquiry to
// device id 0x00 or 0x7F.
func isDeviceInquiry(m midi.Message) bool {
	var data []byte
	if !m.GetSysEx(&data) || len(data) != 4 {
		return false
	}
	return data[0] == 0x7E && (data[1] == 0x00 || data[1] == 0x7F) && data[2] == 0x06 && data[3] == 0x01
}

// Surface is the device end of a HUI connection. It answers pings and device
// inquiries and announces itself with a system reset when it starts and
// closes.
type Surface struct {
	*Bank
}

// NewSurface starts a surface sending to send. The system reset is sent
// before NewSurface returns.
func NewSurface(send Sender, opts ...Option) *Surface {
	opts = append(opts, func(o *bankOptions) {
		o.hook = surfaceHook
		o.intercept = surfaceIntercept
	})
	s := &Surface{Bank: NewBank(gohui.RoleSurface, send, opts...)}
	if err := s.sendRaw(gohui.SystemResetMessage()); err != nil {
		s.logger.Warn("system reset failed", zap.Error(err))
	}
	return s
}

func surfaceHook(b *Bank, ev gohui.Event) {
	if _, ok := ev.(gohui.PingEvent); !ok {
		return
	}
	if err := b.sendRaw(gohui.PingMessage(gohui.RoleHost)); err != nil {
		b.logger.Debug("ping reply failed", zap.Error(err))
	}
}

func surfaceIntercept(b *Bank, m midi.Message) bool {
	if !isDeviceInquiry(m) {
		return false
	}
	b.logger.Debug("device inquiry")
	if err := b.sendRaw(identityReply); err != nil {
		b.logger.Debug("identity reply failed", zap.Error(err))
	}
	return true
}

// Close sends a system reset and stops the surface.
func (s *Surface) Close() error {
	if s.closed() {
		return nil
	}
	if err := s.sendRaw(gohui.SystemResetMessage()); err != nil {
		s.logger.Warn("system reset failed", zap.Error(err))
	}
	return s.Bank.Close()
}
