package presence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/hikari-games/foxden-server/internal/testutil"
)

// fakeConn records Send/Close calls for assertions
type fakeConn struct {
	id     uuid.UUID
	sent   [][]byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: uuid.New()}
}

func (c *fakeConn) ID() uuid.UUID    { return c.id }
func (c *fakeConn) Send(data []byte) { c.sent = append(c.sent, data) }
func (c *fakeConn) Close()           { c.closed = true }

type TableSuite struct {
	suite.Suite
	table *Table
}

func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableSuite))
}

func (s *TableSuite) SetupTest() {
	s.table = NewTable(testutil.NopLogger())
}

func (s *TableSuite) entry(username string, conn Conn) *Entry {
	return &Entry{Username: username, Nickname: "Nick", Conn: conn}
}

func (s *TableSuite) TestClaimFirstConnection() {
	evicted := s.table.Claim(s.entry("alice_01", newFakeConn()))
	s.Nil(evicted)
	s.Equal(1, s.table.Count())
}

func (s *TableSuite) TestClaimEvictsPriorConnection() {
	first := newFakeConn()
	second := newFakeConn()

	s.table.Claim(s.entry("alice_01", first))
	evicted := s.table.Claim(s.entry("alice_01", second))

	s.Require().NotNil(evicted)
	s.Equal(first.ID(), evicted.Conn.ID())

	// Only the new connection remains in the table
	s.Equal(1, s.table.Count())
	got, ok := s.table.Get("alice_01")
	s.Require().True(ok)
	s.Equal(second.ID(), got.Conn.ID())
}

func (s *TableSuite) TestClaimSameConnectionTwiceEvictsNothing() {
	conn := newFakeConn()

	s.table.Claim(s.entry("alice_01", conn))
	evicted := s.table.Claim(s.entry("alice_01", conn))

	s.Nil(evicted)
	s.Equal(1, s.table.Count())
}

func (s *TableSuite) TestReleaseRemovesEntry() {
	conn := newFakeConn()
	s.table.Claim(s.entry("alice_01", conn))

	released := s.table.Release("alice_01", conn.ID())
	s.True(released)
	s.Equal(0, s.table.Count())
}

func (s *TableSuite) TestReleaseByEvictedConnectionIsIgnored() {
	first := newFakeConn()
	second := newFakeConn()

	s.table.Claim(s.entry("alice_01", first))
	s.table.Claim(s.entry("alice_01", second))

	// The evicted connection's disconnect must not delete the new entry
	released := s.table.Release("alice_01", first.ID())
	s.False(released)

	got, ok := s.table.Get("alice_01")
	s.Require().True(ok)
	s.Equal(second.ID(), got.Conn.ID())
}

func (s *TableSuite) TestReleaseUnknownUsername() {
	s.False(s.table.Release("nobody_1", uuid.New()))
}

func (s *TableSuite) TestListOthersExcludesSelf() {
	s.table.Claim(s.entry("alice_01", newFakeConn()))
	s.table.Claim(s.entry("bobby_01", newFakeConn()))
	s.table.Claim(s.entry("carol_01", newFakeConn()))

	others := s.table.ListOthers("bobby_01")
	s.Len(others, 2)
	for _, e := range others {
		s.NotEqual("bobby_01", e.Username)
	}

	s.Len(s.table.List(), 3)
}
