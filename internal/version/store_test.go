package version

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daniyal-rahman/ncfd/internal/store"
	"github.com/daniyal-rahman/ncfd/internal/trial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a minimal in-memory fake of store.TrialStore + store.TxRunner,
// snapshotting state before each trial transaction so a returned error rolls
// back only that trial's writes, mirroring the real Postgres nested-scope
// semantics without a database.
type memStore struct {
	trials    map[string]trial.Trial
	versions  map[string][]trial.Version
	failWrite map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		trials:    map[string]trial.Trial{},
		versions:  map[string][]trial.Version{},
		failWrite: map[string]bool{},
	}
}

func (m *memStore) GetTrial(_ context.Context, id string) (trial.Trial, bool, error) {
	t, ok := m.trials[id]
	return t, ok, nil
}

func (m *memStore) LatestVersion(_ context.Context, id string) (trial.Version, bool, error) {
	vs := m.versions[id]
	if len(vs) == 0 {
		return trial.Version{}, false, nil
	}
	return vs[len(vs)-1], true, nil
}

func (m *memStore) CreateTrialAndVersion(_ context.Context, t trial.Trial, v trial.Version) error {
	if m.failWrite[t.ID] {
		return errors.New("simulated constraint violation")
	}
	if _, exists := m.trials[t.ID]; exists {
		return errors.New("trial already exists")
	}
	m.trials[t.ID] = t
	m.versions[t.ID] = []trial.Version{v}
	return nil
}

func (m *memStore) TouchLastSeen(_ context.Context, id string, seenAt time.Time) error {
	t, ok := m.trials[id]
	if !ok {
		return errors.New("no such trial")
	}
	t.LastSeenAt = seenAt
	m.trials[id] = t
	return nil
}

func (m *memStore) AppendVersion(_ context.Context, t trial.Trial, v trial.Version) error {
	if _, ok := m.trials[t.ID]; !ok {
		return errors.New("no such trial")
	}
	m.trials[t.ID] = t
	m.versions[t.ID] = append(m.versions[t.ID], v)
	return nil
}

func (m *memStore) SetSponsorCompany(_ context.Context, trialID string, companyID int64) error {
	t, ok := m.trials[trialID]
	if !ok {
		return errors.New("no such trial")
	}
	t.SponsorCompanyID = &companyID
	m.trials[trialID] = t
	return nil
}

// WithTrialTx snapshots this trial's rows, runs fn, and restores the
// snapshot if fn returns an error.
func (m *memStore) WithTrialTx(ctx context.Context, trialID string, fn func(ctx context.Context, s store.TrialStore) error) error {
	prevTrial, hadTrial := m.trials[trialID]
	prevVersions := append([]trial.Version(nil), m.versions[trialID]...)

	if err := fn(ctx, m); err != nil {
		if hadTrial {
			m.trials[trialID] = prevTrial
		} else {
			delete(m.trials, trialID)
		}
		m.versions[trialID] = prevVersions
		return err
	}
	return nil
}

func rawWithTitle(title string) trial.Raw {
	return trial.Raw{"protocolSection": map[string]interface{}{
		"identificationModule": map[string]interface{}{"briefTitle": title},
	}}
}

func TestUpsertTrialAndVersion_FirstIngestion(t *testing.T) {
	ms := newMemStore()
	s := NewStore(ms)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	v, err := s.UpsertTrialAndVersion(context.Background(), "NCT1", rawWithTitle("A"), now)
	require.NoError(t, err)
	assert.Empty(t, v.Changes)

	tr, ok, err := ms.GetTrial(context.Background(), "NCT1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", tr.BriefTitle)
	assert.Len(t, ms.versions["NCT1"], 1)
}

func TestUpsertTrialAndVersion_UnchangedTouchesLastSeenOnly(t *testing.T) {
	ms := newMemStore()
	s := NewStore(ms)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := s.UpsertTrialAndVersion(context.Background(), "NCT1", rawWithTitle("A"), t0)
	require.NoError(t, err)

	_, err = s.UpsertTrialAndVersion(context.Background(), "NCT1", rawWithTitle("A"), t1)
	require.NoError(t, err)

	assert.Len(t, ms.versions["NCT1"], 1)
	tr, _, _ := ms.GetTrial(context.Background(), "NCT1")
	assert.Equal(t, t1, tr.LastSeenAt)
}

func TestUpsertTrialAndVersion_ChangeAppendsVersionAndClassifies(t *testing.T) {
	ms := newMemStore()
	s := NewStore(ms)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := s.UpsertTrialAndVersion(context.Background(), "NCT1", rawWithTitle("A"), t0)
	require.NoError(t, err)

	v, err := s.UpsertTrialAndVersion(context.Background(), "NCT1", rawWithTitle("B"), t1)
	require.NoError(t, err)

	require.Len(t, v.Changes, 1)
	assert.Equal(t, trial.SignificanceLow, v.Changes[0].Significance)
	assert.Len(t, ms.versions["NCT1"], 2)
}

func TestUpsertTrialAndVersion_FailurePreservesPriorBatchState(t *testing.T) {
	ms := newMemStore()
	s := NewStore(ms)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.UpsertTrialAndVersion(context.Background(), "NCT1", rawWithTitle("A"), now)
	require.NoError(t, err)

	// Force a write failure on a second, independent trial and confirm
	// the first trial's already-committed state survives untouched.
	ms.failWrite["NCT2"] = true
	_, err = s.UpsertTrialAndVersion(context.Background(), "NCT2", rawWithTitle("C"), now)
	assert.Error(t, err)

	tr, ok, _ := ms.GetTrial(context.Background(), "NCT1")
	require.True(t, ok)
	assert.Equal(t, "A", tr.BriefTitle)
}
