package handlers_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func storedRun(id string, started time.Time) *storage.Run {
	completed := started.Add(time.Second)
	run := &storage.Run{
		ID:           id,
		SourceALabel: "Bank",
		SourceBLabel: "Ledger",
		Rules:        matcher.DefaultRules(),
		Status:       storage.RunStatusCompleted,
		StartedAt:    started,
		CompletedAt:  &completed,
		RowCountA:    3,
		RowCountB:    2,
	}
	run.ApplyResult(&matcher.MatchingResult{
		Matched: []matcher.MatchPair{
			{SourceAIndex: 0, SourceBIndex: 0, Confidence: 71, Method: matcher.MethodExact},
		},
		UnmatchedA: []int{1, 2},
		UnmatchedB: []int{1},
		Exceptions: []matcher.ExceptionClassification{
			{Category: matcher.CategoryBankFee, Reason: "service charge", Source: matcher.SideA, RowIndex: 2},
			{Category: matcher.CategoryInterest, Reason: "interest paid", Source: matcher.SideA, RowIndex: 1},
			{Category: matcher.CategoryBankFee, Reason: "wire fee", Source: matcher.SideB, RowIndex: 1},
		},
		Variance: 4.25,
	})
	return run
}
