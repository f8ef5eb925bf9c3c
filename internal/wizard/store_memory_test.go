package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"dladmin/internal/form"
	id "dladmin/pkg/domain"
	"dladmin/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	clock time.Time
	store *InMemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.clock = now
	s.store = NewInMemoryStore(30*time.Minute, WithMemoryClock(func() time.Time { return s.clock }))
}

func (s *MemoryStoreSuite) newSession() *Session {
	sess, err := NewSession(TypeNewLicense, id.OfficerID(uuid.New()), now)
	s.Require().NoError(err)
	return sess
}

func (s *MemoryStoreSuite) TestSaveAndGetReturnCopies() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Save(ctx, sess))

	sess.Fields[FieldCategory] = form.Enum("B")

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.False(got.Fields.Has(FieldCategory), "stored session must not alias the caller's")

	got.History = append(got.History, StepPerson)
	again, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Empty(again.History)
}

func (s *MemoryStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), id.NewWizardID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestUpdateAppliesOnlyOnSuccess() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Save(ctx, sess))

	boom := errors.New("boom")
	_, err := s.store.Update(ctx, sess.ID, func(in *Session) error {
		in.Banner = "should not persist"
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Empty(got.Banner)

	updated, err := s.store.Update(ctx, sess.ID, func(in *Session) error {
		in.Banner = "kept"
		return nil
	})
	s.Require().NoError(err)
	s.Equal("kept", updated.Banner)
}

func (s *MemoryStoreSuite) TestSlidingExpiry() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Save(ctx, sess))

	s.clock = s.clock.Add(20 * time.Minute)
	_, err := s.store.Update(ctx, sess.ID, func(*Session) error { return nil })
	s.Require().NoError(err)

	s.clock = s.clock.Add(20 * time.Minute)
	_, err = s.store.Get(ctx, sess.ID)
	s.Require().NoError(err, "update refreshed the TTL")

	s.clock = s.clock.Add(31 * time.Minute)
	_, err = s.store.Get(ctx, sess.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Equal(0, s.store.Len())
}

func (s *MemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Save(ctx, sess))

	s.Require().NoError(s.store.Delete(ctx, sess.ID))
	s.ErrorIs(s.store.Delete(ctx, sess.ID), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestConcurrentUpdatesSerialize() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Save(ctx, sess))

	const workers = 25
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(ctx, sess.ID, func(in *Session) error {
				in.History = append(in.History, StepPerson)
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Len(got.History, workers)
}
