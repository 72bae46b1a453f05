package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"comboforge/combo"
	"comboforge/ingest"
	"comboforge/selection"
)

func source(name, text string) ingest.Source {
	return ingest.Source{Name: name, Data: []byte(text)}
}

func smallParams() Params {
	return Params{
		MaxNumber: combo.DefaultMaxNumber,
		MinScore:  1,
		Selection: selection.Config{Target: 3, SegmentACap: 2, Density: combo.Bounds{Lo: 1, Hi: 20}},
	}
}

func sampleInput() Input {
	rounds := source("rounds.txt", "1 2 3 4 40 50\n1 2 3 4 5 6\n40 50 60 1 2\n5 10 15 20 30\n")
	return Input{
		Variants: []ingest.Source{
			source("v1.txt", "4 3 2 1\n50 40 1 2\n5 10 15 20\n1 2 3 67\n"),
			source("v2.txt", "1 2 3 4\n60 50 40 1\n2 3 4 5\n7 8 9 10\n"),
		},
		Rounds: &rounds,
	}
}

func TestRunEndToEnd(t *testing.T) {
	res, err := NewRunner(nil, nil).Run(sampleInput(), smallParams())
	require.NoError(t, err)

	assert.Equal(t, 7, res.Store.RawCount())
	assert.Equal(t, 6, res.Store.UniqueCount())
	assert.Equal(t, 1, res.Store.DuplicatesRemoved())
	assert.Len(t, res.Rounds, 4)

	// ids: 1={1,2,3,4} 2={1,2,40,50} 3={5,10,15,20} 4={1,40,50,60} 5={2,3,4,5} 6={7,8,9,10}
	var ranked []int
	for _, v := range res.Ranked {
		ranked = append(ranked, v.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ranked)
	assert.Equal(t, []int{2, 2, 1, 1, 1, 0}, scoresOf(res.Ranked))
	assert.Len(t, res.Filtered, 5)

	assert.Equal(t, []int{1, 3}, idsOf(res.Selection.SegmentA))
	assert.Equal(t, []int{2}, idsOf(res.Selection.SegmentB))

	var out bytes.Buffer
	require.NoError(t, res.Export(&out))
	assert.Equal(t, "1,1 2 3 4\n3,5 10 15 20\n2,1 2 40 50\n", out.String())

	rep := res.Report
	assert.Equal(t, 7, rep.RawVariants)
	assert.Equal(t, 5, rep.Matched)
	assert.Equal(t, 2, rep.TopScore)
	assert.Equal(t, 3, rep.Selected)
	require.NotNil(t, rep.RoundSource)
	assert.Equal(t, 4, rep.RoundSource.Accepted)
	assert.Empty(t, rep.Diagnostics)
}

func scoresOf(vs []combo.Variant) []int {
	out := make([]int, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Score)
	}
	return out
}

func idsOf(vs []combo.Variant) []int {
	out := make([]int, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

func TestRunWithoutRounds(t *testing.T) {
	in := sampleInput()
	in.Rounds = nil

	res, err := NewRunner(nil, nil).Run(in, smallParams())
	require.NoError(t, err)
	assert.Empty(t, res.Filtered, "default threshold drops unmatched variants")
	assert.Zero(t, res.Selection.Len())
	assert.Nil(t, res.Report.RoundSource)

	p := smallParams()
	p.MinScore = 0
	res, err = NewRunner(nil, nil).Run(in, p)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Selection.Len())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, idsOf(res.Ranked), "ranking falls back to id order")
}

func TestRunEmptyInput(t *testing.T) {
	res, err := NewRunner(nil, nil).Run(Input{}, DefaultParams())
	require.NoError(t, err)
	assert.Zero(t, res.Store.UniqueCount())
	assert.Zero(t, res.Selection.Len())

	var out bytes.Buffer
	require.NoError(t, res.Export(&out))
	assert.Empty(t, out.String())
}

func TestRunRejectsInvalidParamsBeforeWork(t *testing.T) {
	p := smallParams()
	p.Selection.Density = combo.Bounds{Lo: 10, Hi: 11}
	_, err := NewRunner(nil, nil).Run(sampleInput(), p)
	assert.ErrorIs(t, err, ErrParams)
	assert.ErrorIs(t, err, combo.ErrDensityRange)

	p = smallParams()
	p.MinScore = -1
	_, err = NewRunner(nil, nil).Run(sampleInput(), p)
	assert.ErrorIs(t, err, ErrParams)
}

func TestRunReportsInputDefects(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bad := ingest.Source{Name: "broken.bin", Data: []byte{0xc3, 0x28, 0x0a}}
	rounds := ingest.Source{Name: "rounds.bin", Data: []byte{0x80, 0x81}}
	in := Input{Variants: []ingest.Source{bad, source("ok.txt", "1 2 3 4\n")}, Rounds: &rounds}

	p := smallParams()
	p.MinScore = 0
	res, err := NewRunner(zap.New(core), nil).Run(in, p)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Store.UniqueCount())
	assert.Empty(t, res.Rounds)
	require.Len(t, res.Diagnostics, 2)
	assert.Len(t, res.Report.Diagnostics, 2)
	assert.Equal(t, 1, logs.FilterMessage("input defect").FilterField(zap.String("source", "broken.bin")).Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestRunMemoizes(t *testing.T) {
	cache := NewCache(2)
	runner := NewRunner(nil, cache)

	first, err := runner.Run(sampleInput(), smallParams())
	require.NoError(t, err)
	second, err := runner.Run(sampleInput(), smallParams())
	require.NoError(t, err)
	assert.Same(t, first, second)

	p := smallParams()
	p.MinScore = 2
	third, err := runner.Run(sampleInput(), p)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, third.Selection.Len())

	m := cache.Metrics()
	assert.Equal(t, uint64(3), m.Lookups)
	assert.Equal(t, uint64(1), m.Hits)
	assert.Equal(t, 2, m.Entries)
}
