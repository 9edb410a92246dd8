package retrieval

import (
	"context"
	"sync"
	"time"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/rag/contextbuilder"
)

const defaultBranchTimeout = 10 * time.Second

// Branches holds the four retrieval operations that feed the composer. Each
// closure receives its own deadline-bound context.
type Branches struct {
	Recent      func(ctx context.Context) ([]contextbuilder.Turn, error)
	Older       func(ctx context.Context) ([]contextbuilder.ScoredTurn, error)
	KB          func(ctx context.Context) ([]contextbuilder.KBChunk, error)
	Attachments func(ctx context.Context) ([]contextbuilder.AttachmentChunk, error)
}

// Results carries every branch's outcome. A failed branch leaves its slice
// empty and records the error; callers never see a partial failure as a
// pipeline failure.
type Results struct {
	Recent      []contextbuilder.Turn
	Older       []contextbuilder.ScoredTurn
	KB          []contextbuilder.KBChunk
	Attachments []contextbuilder.AttachmentChunk

	RecentErr      error
	OlderErr       error
	KBErr          error
	AttachmentsErr error
}

// Orchestrator fans the retrieval branches out concurrently and gathers
// their results, isolating each branch's failure from the others.
type Orchestrator struct {
	branchTimeout time.Duration
	log           logger.ILogger
}

func NewOrchestrator(branchTimeout time.Duration, log logger.ILogger) *Orchestrator {
	if branchTimeout <= 0 {
		branchTimeout = defaultBranchTimeout
	}
	return &Orchestrator{branchTimeout: branchTimeout, log: log}
}

// Gather launches all provided branches together and waits for every one of
// them. Nil branches are skipped. Branch errors (including timeouts) degrade
// that branch to an empty result.
func (o *Orchestrator) Gather(ctx context.Context, branches Branches) Results {
	var (
		results Results
		wg      sync.WaitGroup
	)

	if branches.Recent != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			branchCtx, cancel := context.WithTimeout(ctx, o.branchTimeout)
			defer cancel()
			items, err := branches.Recent(branchCtx)
			if err != nil {
				results.RecentErr = err
				o.warn("recent turns", err)
				return
			}
			results.Recent = items
		}()
	}

	if branches.Older != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			branchCtx, cancel := context.WithTimeout(ctx, o.branchTimeout)
			defer cancel()
			items, err := branches.Older(branchCtx)
			if err != nil {
				results.OlderErr = err
				o.warn("older turns", err)
				return
			}
			results.Older = items
		}()
	}

	if branches.KB != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			branchCtx, cancel := context.WithTimeout(ctx, o.branchTimeout)
			defer cancel()
			items, err := branches.KB(branchCtx)
			if err != nil {
				results.KBErr = err
				o.warn("knowledge base chunks", err)
				return
			}
			results.KB = items
		}()
	}

	if branches.Attachments != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			branchCtx, cancel := context.WithTimeout(ctx, o.branchTimeout)
			defer cancel()
			items, err := branches.Attachments(branchCtx)
			if err != nil {
				results.AttachmentsErr = err
				o.warn("attachment chunks", err)
				return
			}
			results.Attachments = items
		}()
	}

	wg.Wait()
	return results
}

func (o *Orchestrator) warn(branch string, err error) {
	if o.log == nil {
		return
	}
	o.log.Warn("Retrieval", "retrieval branch degraded to empty", map[string]interface{}{
		"branch": branch,
		"error":  err.Error(),
	})
}
