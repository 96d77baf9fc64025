package countdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFire(t *testing.T) {
	t.Parallel()
	tests := []struct {
		from    State
		event   Event
		want    State
		wantErr bool
	}{
		{Stopped, EventStart, Running, false},
		{Running, EventStop, Stopped, false},
		{Running, EventStart, Running, true},
		{Stopped, EventStop, Stopped, true},
		{Stopped, Event("pause"), Stopped, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+string(tt.event), func(t *testing.T) {
			t.Parallel()
			got, err := fire("id", tt.from, tt.event)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, !tt.wantErr, canFire(tt.from, tt.event))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "id", te.ID)
			assert.Equal(t, tt.from, te.State)
			assert.Equal(t, tt.event, te.Event)
			assert.True(t, IsTransitionError(err))
		})
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "unknown", State(7).String())
}
