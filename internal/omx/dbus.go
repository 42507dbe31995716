package omx

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	mprisPath       = "/org/mpris/MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
	propsInterface  = "org.freedesktop.DBus.Properties"
)

// DBusClient implements ControlClient over the player's MPRIS D-Bus
// interface. The player claims the configured bus name once it has
// initialized; until then every call fails with a name-ownership error,
// which the readiness prober treats as transient.
type DBusClient struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewDBusClient connects to the session bus and binds the given bus name.
// Connecting does not verify the name is owned; the first call does.
func NewDBusClient(name string) (*DBusClient, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &DBusClient{
		conn: conn,
		obj:  conn.Object(name, mprisPath),
	}, nil
}

// Close releases the bus connection.
func (c *DBusClient) Close() error {
	return c.conn.Close()
}

// GetFloat queries a numeric player property via org.freedesktop.DBus.Properties.
func (c *DBusClient) GetFloat(ctx context.Context, property string) (float64, error) {
	call := c.obj.CallWithContext(ctx, propsInterface+".Get", 0, playerInterface, property)
	if call.Err != nil {
		return 0, fmt.Errorf("get %s: %w", property, call.Err)
	}

	var v dbus.Variant
	if err := call.Store(&v); err != nil {
		return 0, fmt.Errorf("get %s: %w", property, err)
	}

	switch n := v.Value().(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("get %s: unexpected type %T", property, v.Value())
	}
}

// PlayStatus queries the PlaybackStatus property.
func (c *DBusClient) PlayStatus(ctx context.Context) (string, error) {
	call := c.obj.CallWithContext(ctx, propsInterface+".Get", 0, playerInterface, "PlaybackStatus")
	if call.Err != nil {
		return "", fmt.Errorf("get PlaybackStatus: %w", call.Err)
	}

	var v dbus.Variant
	if err := call.Store(&v); err != nil {
		return "", fmt.Errorf("get PlaybackStatus: %w", err)
	}
	status, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("get PlaybackStatus: unexpected type %T", v.Value())
	}
	return status, nil
}

// SetPosition seeks to an absolute position.
func (c *DBusClient) SetPosition(ctx context.Context, pos time.Duration) error {
	// SetPosition takes a track path (ignored by the player) and microseconds.
	call := c.obj.CallWithContext(ctx, playerInterface+".SetPosition", 0,
		dbus.ObjectPath("/not/used"), pos.Microseconds())
	if call.Err != nil {
		return fmt.Errorf("set position: %w", call.Err)
	}
	return nil
}

// Pause suspends playback.
func (c *DBusClient) Pause(ctx context.Context) error {
	if call := c.obj.CallWithContext(ctx, playerInterface+".Pause", 0); call.Err != nil {
		return fmt.Errorf("pause: %w", call.Err)
	}
	return nil
}

// Resume resumes playback.
func (c *DBusClient) Resume(ctx context.Context) error {
	if call := c.obj.CallWithContext(ctx, playerInterface+".Play", 0); call.Err != nil {
		return fmt.Errorf("resume: %w", call.Err)
	}
	return nil
}

// Stop stops playback, which also terminates the player process.
func (c *DBusClient) Stop(ctx context.Context) error {
	if call := c.obj.CallWithContext(ctx, playerInterface+".Stop", 0); call.Err != nil {
		return fmt.Errorf("stop: %w", call.Err)
	}
	return nil
}
