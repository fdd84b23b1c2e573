package device

import (
	"context"
	"errors"
	"testing"
)

func controlFixture() map[string]string {
	return map[string]string{
		"tradfri/device/10": `{"type":2,"name":"Desk","light":[{"on":false}]}`,
		"tradfri/device/20": `{"type":3,"name":"Kettle","plug":[{"on":false}]}`,
		"tradfri/device/30": `{"type":0,"name":"Remote"}`,
	}
}

func TestController_Switch(t *testing.T) {
	gw, tr := newTestGatewayWithTransport(controlFixture())
	c := NewController(gw)
	ctx := context.Background()

	kind, err := c.Switch(ctx, 10, true)
	if err != nil || kind != KindLight {
		t.Fatalf("Switch(light) = %v, %v", kind, err)
	}
	if got := tr.published["tradfri/command/10"]; got != `{"on":true}` {
		t.Errorf("light command = %s", got)
	}

	kind, err = c.Switch(ctx, 20, true)
	if err != nil || kind != KindPlug {
		t.Fatalf("Switch(plug) = %v, %v", kind, err)
	}
	if got := tr.published["tradfri/command/20"]; got != `{"on":true}` {
		t.Errorf("plug command = %s", got)
	}

	if _, err := c.Switch(ctx, 30, true); !errors.Is(err, ErrNotControllable) {
		t.Errorf("Switch(remote) error = %v, want ErrNotControllable", err)
	}
}

func TestController_Dim(t *testing.T) {
	gw, tr := newTestGatewayWithTransport(controlFixture())
	c := NewController(gw)
	ctx := context.Background()

	tests := []struct {
		percent int
		want    string
	}{
		{100, `{"on":true,"dimmer":254}`},
		{50, `{"on":true,"dimmer":127}`},
		{0, `{"on":false,"dimmer":0}`},
	}
	for _, tt := range tests {
		if err := c.Dim(ctx, 10, tt.percent); err != nil {
			t.Fatalf("Dim(%d) error = %v", tt.percent, err)
		}
		if got := tr.published["tradfri/command/10"]; got != tt.want {
			t.Errorf("Dim(%d) command = %s, want %s", tt.percent, got, tt.want)
		}
	}

	if err := c.Dim(ctx, 10, 101); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Dim(101) error = %v, want ErrInvalidLevel", err)
	}
	if err := c.Dim(ctx, 20, 50); !errors.Is(err, ErrNotControllable) {
		t.Errorf("Dim(plug) error = %v, want ErrNotControllable", err)
	}
}
