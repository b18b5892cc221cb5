package source

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcade/internal/record"
)

func static(doc string) Transport {
	return TransportFunc(func(context.Context, Request) ([]byte, error) {
		return []byte(doc), nil
	})
}

func TestClient_Progress_FlattensAndDrops(t *testing.T) {
	c := NewClient(DirTransport{Dir: "testdata"})

	rows, err := c.Progress(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2, "invalid rows are dropped, the batch is kept")

	abc := record.MustAddress("0xabc")
	assert.Equal(t, record.ProgressRecord{
		Project: "g1", Player: abc, AchievementID: "a1", TaskID: "t1",
		Count: 5, Total: 5, CompletedAt: 1500,
	}, rows[0])
	assert.Equal(t, "g4", rows[1].Project)
	assert.Equal(t, abc, rows[1].Player, "every address form normalizes to one key")
}

func TestClient_ProjectFilter(t *testing.T) {
	c := NewClient(DirTransport{Dir: "testdata"})
	rows, err := c.Progress(context.Background(), []record.Selector{{Project: "g4"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "g4", rows[0].Project)
}

func TestClient_AbsentArraysAreEmpty(t *testing.T) {
	c := NewClient(DirTransport{Dir: t.TempDir()})

	rows, err := c.Trophies(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	sessions, err := NewClient(static(`[{"meta":{"project":"g"},"playthroughs":[{"callerAddress":"0x1","sessionStart":1,"sessionEnd":2}]}]`)).
		Sessions(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.NotNil(t, sessions[0].Actions)
}

func TestClient_TransportErrorPassesThrough(t *testing.T) {
	boom := errors.New("503")
	c := NewClient(TransportFunc(func(context.Context, Request) ([]byte, error) { return nil, boom }))
	_, err := c.Editions(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestClient_MalformedDocument(t *testing.T) {
	_, err := NewClient(static(`{"not":"an array"}`)).Trophies(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode trophies response")
}

func TestClient_TrophiesAndEditions(t *testing.T) {
	doc := `[{"meta":{"project":"g1"},"trophies":[
		{"id":"a1","points":20,"hidden":true,"title":"First","tasks":[{"id":"t1","total":3}]},
		{"id":"a2","points":5,"tasks":[]}
	]}]`
	rows, err := NewClient(static(doc)).Trophies(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, record.TrophyDefinition{
		Project: "g1", ID: "a1", Earning: 20, Hidden: true, Title: "First",
		Tasks: []record.Task{{ID: "t1", Total: 3}},
	}, rows[0])

	eds, err := NewClient(static(`[{"meta":{"project":"g1"},"editions":[{"name":"One","priority":3}]}]`)).Editions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []record.Edition{{Project: "g1", Name: "One", Priority: 3}}, eds)
}

func TestClient_EventsNumberedInDocumentOrder(t *testing.T) {
	doc := `[
		{"meta":{"project":"social"},"pins":[
			{"playerId":"0x1","achievementId":"a1","time":100},
			{"playerId":"0x1","achievementId":"a2","time":200}
		]},
		{"meta":{"project":"social2"},"pins":[
			{"playerId":"0x1","achievementId":"a1","time":0}
		]}
	]`
	pins, err := NewClient(static(doc)).Pins(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, pins, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{pins[0].Seq, pins[1].Seq, pins[2].Seq})
	assert.True(t, pins[2].Removal())

	follows, err := NewClient(static(`[{"meta":{},"follows":[{"follower":"0x1","followed":"0x2","time":9}]}]`)).
		Follows(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, follows, 1)
	assert.Equal(t, int64(1), follows[0].Seq)
	assert.Equal(t, record.MustAddress("0x2"), follows[0].Followed)
}

func TestClient_AccountsFilteredToRequest(t *testing.T) {
	var got Request
	transport := TransportFunc(func(_ context.Context, req Request) ([]byte, error) {
		got = req
		return []byte(`[{"meta":{},"accounts":[
			{"address":"0x1","username":" ann "},
			{"address":"0x2","username":"bob"}
		]}]`), nil
	})
	want := record.MustAddress("0x1")
	accounts, err := NewClient(transport).Accounts(context.Background(), []record.Address{want})
	require.NoError(t, err)
	assert.Equal(t, []record.Account{{Address: want, Username: "ann"}}, accounts)
	assert.Equal(t, record.KindAccount, got.Kind)
	assert.Equal(t, []string{want.String()}, got.Addresses)

	none, err := NewClient(transport).Accounts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDirTransport_ReadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(dir+"/trophies.json", 0o755))
	_, err := DirTransport{Dir: dir}.Query(context.Background(), Request{Kind: record.KindTrophy})
	assert.Error(t, err)
}

func TestClient_RowProjectOverridesEnvelope(t *testing.T) {
	doc := `[{"meta":{"project":"g1"},"progressions":[
		{"project":"g9","playerId":"0x1","achievementId":"a1","taskId":"t1","count":1,"total":1,"completionTime":10},
		{"playerId":"0x1","achievementId":"a1","taskId":"t1","count":1,"total":1,"completionTime":10}
	]}]`
	rows, err := NewClient(static(doc)).Progress(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "g9", rows[0].Project)
	assert.Equal(t, "g1", rows[1].Project)

	trophies, err := NewClient(static(`[{"trophies":[{"project":"g2","id":"a1","points":5,"tasks":[{"id":"t1","total":1}]}]}]`)).
		Trophies(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, trophies, 1)
	assert.Equal(t, "g2", trophies[0].Project, "a row can name its project without an envelope meta")
}
