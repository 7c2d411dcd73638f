package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tsk := New(1, Spec{
		Name:            "report",
		Priority:        PriorityMedium,
		ExecutionTimeMs: 500,
	}, now)

	assert.Equal(t, 1, tsk.ID)
	assert.Equal(t, "report", tsk.Name)
	assert.Equal(t, StatusPending, tsk.Status)
	assert.Equal(t, NoGang, tsk.GangID)
	assert.Equal(t, uint(DefaultLotteryTickets), tsk.LotteryTickets)
	assert.Equal(t, NoWorker, tsk.WorkerID)
	assert.Equal(t, uint(500), tsk.RemainingTimeMs)
	assert.Equal(t, PriorityMedium, tsk.CurrentMLFQLevel)
	assert.Equal(t, now, tsk.CreationTime)
	assert.True(t, tsk.StartTime.IsZero())
	assert.True(t, tsk.EndTime.IsZero())
}

func TestNewHonorsExplicitGangAndTickets(t *testing.T) {
	now := time.Now()
	tsk := New(2, Spec{
		Name:            "batch",
		Priority:        PriorityHigh,
		ExecutionTimeMs: 100,
		GangID:          7,
		LotteryTickets:  42,
	}, now)

	assert.Equal(t, 7, tsk.GangID)
	assert.Equal(t, uint(42), tsk.LotteryTickets)
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr error
	}{
		{
			name:    "empty name",
			spec:    Spec{Name: "", Priority: PriorityHigh},
			wantErr: ErrNameEmpty,
		},
		{
			name:    "name too long",
			spec:    Spec{Name: string(make([]byte, MaxNameBytes+1)), Priority: PriorityHigh},
			wantErr: ErrNameTooLong,
		},
		{
			name:    "invalid priority",
			spec:    Spec{Name: "x", Priority: Priority(7)},
			wantErr: ErrInvalidPriority,
		},
		{
			name:    "valid",
			spec:    Spec{Name: "x", Priority: PriorityLow},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCanRetry(t *testing.T) {
	tsk := New(1, Spec{Name: "x", Priority: PriorityHigh}, time.Now())

	tsk.RetryCount = 0
	assert.True(t, tsk.CanRetry(3))

	tsk.RetryCount = 3
	assert.False(t, tsk.CanRetry(3))
}

func TestHasDeadlineAndTimeout(t *testing.T) {
	tsk := New(1, Spec{Name: "x", Priority: PriorityHigh}, time.Now())
	assert.False(t, tsk.HasDeadline())
	assert.False(t, tsk.HasTimeout())

	tsk.DeadlineTime = time.Now().Add(time.Minute)
	tsk.TimeoutSeconds = 30
	assert.True(t, tsk.HasDeadline())
	assert.True(t, tsk.HasTimeout())
}

func TestCloneIsIndependent(t *testing.T) {
	tsk := New(1, Spec{Name: "x", Priority: PriorityHigh}, time.Now())
	clone := tsk.Clone()

	clone.Status = StatusRunning
	clone.Name = "mutated"

	assert.Equal(t, StatusPending, tsk.Status)
	assert.Equal(t, "x", tsk.Name)
	assert.NotSame(t, tsk, clone)
}

func TestJSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	tsk := New(5, Spec{
		Name:            "roundtrip",
		Priority:        PriorityLow,
		ExecutionTimeMs: 250,
		DeadlineTime:    now.Add(time.Hour),
		GangID:          3,
		TimeoutSeconds:  10,
	}, now)

	data, err := tsk.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, tsk.ID, decoded.ID)
	assert.Equal(t, tsk.Name, decoded.Name)
	assert.Equal(t, tsk.Priority, decoded.Priority)
	assert.Equal(t, tsk.GangID, decoded.GangID)
	assert.True(t, tsk.DeadlineTime.Equal(decoded.DeadlineTime))
}
