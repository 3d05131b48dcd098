package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hyperifyio/gamedoc/internal/docload"
	"github.com/hyperifyio/gamedoc/internal/gamespec"
	"github.com/hyperifyio/gamedoc/internal/gametype"
	"github.com/hyperifyio/gamedoc/internal/review"
)

type fakeConverter struct {
	doc   docload.Document
	err   error
	calls int
}

func (f *fakeConverter) Convert(_ context.Context, _ string) (docload.Document, error) {
	f.calls++
	return f.doc, f.err
}

type fakeSummarizer struct {
	sum   gamespec.Summary
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ docload.Document) (gamespec.Summary, error) {
	f.calls++
	return f.sum, f.err
}

// fakeArchitect returns its scripted specs in order, repeating the last one.
type fakeArchitect struct {
	specs []*gamespec.Spec
	err   error
	calls int
}

func (f *fakeArchitect) Design(_ context.Context, _ gamespec.Summary, _ gametype.Type) (*gamespec.Spec, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.specs) == 0 {
		return nil, nil
	}
	i := f.calls - 1
	if i >= len(f.specs) {
		i = len(f.specs) - 1
	}
	return f.specs[i], nil
}

type fakeReviewer struct {
	verdicts []review.Verdict
	err      error
	calls    int
	seen     []*gamespec.Spec
}

func (f *fakeReviewer) Review(_ context.Context, spec *gamespec.Spec, _ gamespec.Summary) (review.Verdict, error) {
	f.calls++
	f.seen = append(f.seen, spec)
	if f.err != nil || len(f.verdicts) == 0 {
		return review.Verdict{}, f.err
	}
	i := f.calls - 1
	if i >= len(f.verdicts) {
		i = len(f.verdicts) - 1
	}
	return f.verdicts[i], nil
}

type fakeRefiner struct {
	specs     []*gamespec.Spec
	err       error
	calls     int
	feedbacks []string
}

func (f *fakeRefiner) Refine(_ context.Context, _ *gamespec.Spec, feedback string, _ gamespec.Summary) (*gamespec.Spec, error) {
	f.calls++
	f.feedbacks = append(f.feedbacks, feedback)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.specs) == 0 {
		return nil, nil
	}
	i := f.calls - 1
	if i >= len(f.specs) {
		i = len(f.specs) - 1
	}
	return f.specs[i], nil
}

type fakeBuilder struct {
	calls int
	built *gamespec.Spec
	err   error
}

func (f *fakeBuilder) Build(spec *gamespec.Spec) (string, error) {
	f.calls++
	f.built = spec
	if f.err != nil {
		return "", f.err
	}
	return "<html>" + spec.Title + "</html>", nil
}

func specTitled(title string) *gamespec.Spec {
	pairs := make([]gamespec.Pair, 8)
	for i := range pairs {
		pairs[i] = gamespec.Pair{Term: fmt.Sprintf("t%d", i), Definition: fmt.Sprintf("d%d", i)}
	}
	return &gamespec.Spec{GameType: gametype.Matching, Title: title, ThemeColor: "#00bfa5", Pairs: pairs}
}

func controllerWith(conv *fakeConverter, sum *fakeSummarizer, arch *fakeArchitect, rev *fakeReviewer, ref *fakeRefiner, b *fakeBuilder) *Controller {
	return &Controller{
		Converter:  conv,
		Summarizer: sum,
		Architect:  arch,
		Reviewer:   rev,
		Refiner:    ref,
		Builder:    b,
		MaxRetries: 3,
	}
}

func approve() review.Verdict { return review.Verdict{Approved: true, Feedback: "Content approved"} }

func reject(fb string) review.Verdict { return review.Verdict{Approved: false, Feedback: fb} }

func TestRun_ApprovedFirstAttempt(t *testing.T) {
	conv := &fakeConverter{doc: docload.Document{Name: "cells", Text: "body"}}
	sum := &fakeSummarizer{sum: gamespec.Summary{Topic: "Cells"}}
	arch := &fakeArchitect{specs: []*gamespec.Spec{specTitled("v1")}}
	rev := &fakeReviewer{verdicts: []review.Verdict{approve()}}
	ref := &fakeRefiner{}
	b := &fakeBuilder{}

	out, err := controllerWith(conv, sum, arch, rev, ref, b).Run(context.Background(), "cells.md", gametype.Matching)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !out.Approved || out.Attempts != 1 {
		t.Fatalf("expected approved on attempt 1, got %+v", out)
	}
	if out.Summary.Topic != "Cells" {
		t.Fatalf("expected summary in outcome")
	}
	if arch.calls != 1 || ref.calls != 0 || rev.calls != 1 || b.calls != 1 {
		t.Fatalf("unexpected call counts: architect=%d refiner=%d reviewer=%d builder=%d",
			arch.calls, ref.calls, rev.calls, b.calls)
	}
	if b.built.Title != "v1" {
		t.Fatalf("expected builder to get the approved spec, got %q", b.built.Title)
	}
}

func TestRun_RejectThenApprove(t *testing.T) {
	conv := &fakeConverter{doc: docload.Document{Name: "cells"}}
	sum := &fakeSummarizer{sum: gamespec.Summary{Topic: "Cells"}}
	arch := &fakeArchitect{specs: []*gamespec.Spec{specTitled("v1")}}
	rev := &fakeReviewer{verdicts: []review.Verdict{reject("pair 2 is wrong"), approve()}}
	ref := &fakeRefiner{specs: []*gamespec.Spec{specTitled("v2")}}
	b := &fakeBuilder{}

	out, err := controllerWith(conv, sum, arch, rev, ref, b).Run(context.Background(), "cells.md", gametype.Matching)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !out.Approved || out.Attempts != 2 {
		t.Fatalf("expected approval on attempt 2, got %+v", out)
	}
	if arch.calls != 1 || ref.calls != 1 || rev.calls != 2 || b.calls != 1 {
		t.Fatalf("unexpected call counts: architect=%d refiner=%d reviewer=%d builder=%d",
			arch.calls, ref.calls, rev.calls, b.calls)
	}
	if len(ref.feedbacks) != 1 || ref.feedbacks[0] != "pair 2 is wrong" {
		t.Fatalf("expected reviewer feedback passed to refiner, got %v", ref.feedbacks)
	}
	if b.built.Title != "v2" {
		t.Fatalf("expected refined spec built, got %q", b.built.Title)
	}
}

func TestRun_ExhaustionBuildsBestEffort(t *testing.T) {
	// Always-rejecting reviewer with three attempts: one design, two
	// refinements, three reviews, and still exactly one build.
	conv := &fakeConverter{doc: docload.Document{Name: "cells"}}
	sum := &fakeSummarizer{sum: gamespec.Summary{Topic: "Cells"}}
	arch := &fakeArchitect{specs: []*gamespec.Spec{specTitled("v1")}}
	rev := &fakeReviewer{verdicts: []review.Verdict{reject("no")}}
	ref := &fakeRefiner{specs: []*gamespec.Spec{specTitled("v2"), specTitled("v3")}}
	b := &fakeBuilder{}

	out, err := controllerWith(conv, sum, arch, rev, ref, b).Run(context.Background(), "cells.md", gametype.Matching)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out.Approved {
		t.Fatal("expected unapproved outcome")
	}
	if out.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", out.Attempts)
	}
	if arch.calls != 1 || ref.calls != 2 || rev.calls != 3 || b.calls != 1 {
		t.Fatalf("unexpected call counts: architect=%d refiner=%d reviewer=%d builder=%d",
			arch.calls, ref.calls, rev.calls, b.calls)
	}
	if b.built.Title != "v3" {
		t.Fatalf("expected last refined spec built, got %q", b.built.Title)
	}
	if out.HTML != "<html>v3</html>" {
		t.Fatalf("unexpected html: %q", out.HTML)
	}
}

func TestRun_ArchitectNeverProducesFailsFast(t *testing.T) {
	conv := &fakeConverter{doc: docload.Document{Name: "cells"}}
	sum := &fakeSummarizer{}
	arch := &fakeArchitect{} // always (nil, nil)
	rev := &fakeReviewer{verdicts: []review.Verdict{approve()}}
	ref := &fakeRefiner{}
	b := &fakeBuilder{}

	_, err := controllerWith(conv, sum, arch, rev, ref, b).Run(context.Background(), "cells.md", gametype.Matching)
	if !errors.Is(err, ErrNoUsableSpec) {
		t.Fatalf("expected ErrNoUsableSpec, got %v", err)
	}
	// With nothing held there is nothing to refine, so every attempt goes
	// back to the architect and the reviewer and builder never run.
	if arch.calls != 3 || ref.calls != 0 || rev.calls != 0 || b.calls != 0 {
		t.Fatalf("unexpected call counts: architect=%d refiner=%d reviewer=%d builder=%d",
			arch.calls, ref.calls, rev.calls, b.calls)
	}
}

func TestRun_FailedRefinementKeepsPreviousSpec(t *testing.T) {
	conv := &fakeConverter{doc: docload.Document{Name: "cells"}}
	sum := &fakeSummarizer{}
	arch := &fakeArchitect{specs: []*gamespec.Spec{specTitled("v1")}}
	rev := &fakeReviewer{verdicts: []review.Verdict{reject("fix"), reject("fix"), approve()}}
	ref := &fakeRefiner{} // always (nil, nil): refinement never parses
	b := &fakeBuilder{}

	out, err := controllerWith(conv, sum, arch, rev, ref, b).Run(context.Background(), "cells.md", gametype.Matching)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !out.Approved || out.Attempts != 3 {
		t.Fatalf("expected approval on attempt 3, got %+v", out)
	}
	if arch.calls != 1 || ref.calls != 2 || rev.calls != 3 {
		t.Fatalf("unexpected call counts: architect=%d refiner=%d reviewer=%d",
			arch.calls, ref.calls, rev.calls)
	}
	if b.built.Title != "v1" {
		t.Fatalf("expected original spec retained and built, got %q", b.built.Title)
	}
	for _, seen := range rev.seen {
		if seen.Title != "v1" {
			t.Fatalf("expected every review to see the retained spec, got %q", seen.Title)
		}
	}
}

func TestRun_ConversionFailureIsFatal(t *testing.T) {
	conv := &fakeConverter{err: errors.New("no extractable text")}
	sum := &fakeSummarizer{}
	c := controllerWith(conv, sum, &fakeArchitect{}, &fakeReviewer{}, &fakeRefiner{}, &fakeBuilder{})

	_, err := c.Run(context.Background(), "bad.pdf", gametype.Quiz)
	if err == nil {
		t.Fatal("expected conversion error")
	}
	if sum.calls != 0 {
		t.Fatal("expected pipeline to stop before summarizing")
	}
}

func TestRun_SummaryFailureIsFatal(t *testing.T) {
	conv := &fakeConverter{doc: docload.Document{Name: "cells"}}
	sum := &fakeSummarizer{err: errors.New("empty document summary")}
	arch := &fakeArchitect{specs: []*gamespec.Spec{specTitled("v1")}}
	c := controllerWith(conv, sum, arch, &fakeReviewer{}, &fakeRefiner{}, &fakeBuilder{})

	_, err := c.Run(context.Background(), "cells.md", gametype.Quiz)
	if err == nil {
		t.Fatal("expected summary error")
	}
	if arch.calls != 0 {
		t.Fatal("expected pipeline to stop before designing")
	}
}

func TestRun_ReviewerTransportErrorAborts(t *testing.T) {
	conv := &fakeConverter{doc: docload.Document{Name: "cells"}}
	arch := &fakeArchitect{specs: []*gamespec.Spec{specTitled("v1")}}
	rev := &fakeReviewer{err: errors.New("connection reset")}
	b := &fakeBuilder{}
	c := controllerWith(conv, &fakeSummarizer{}, arch, rev, &fakeRefiner{}, b)

	_, err := c.Run(context.Background(), "cells.md", gametype.Matching)
	if err == nil {
		t.Fatal("expected reviewer error to abort the run")
	}
	if b.calls != 0 {
		t.Fatal("expected no build after abort")
	}
}

func TestRun_BuilderErrorPropagates(t *testing.T) {
	conv := &fakeConverter{doc: docload.Document{Name: "cells"}}
	arch := &fakeArchitect{specs: []*gamespec.Spec{specTitled("v1")}}
	rev := &fakeReviewer{verdicts: []review.Verdict{approve()}}
	b := &fakeBuilder{err: errors.New("template not found")}
	c := controllerWith(conv, &fakeSummarizer{}, arch, rev, &fakeRefiner{}, b)

	_, err := c.Run(context.Background(), "cells.md", gametype.Matching)
	if err == nil {
		t.Fatal("expected builder error")
	}
}

func TestRun_NotConfigured(t *testing.T) {
	var c Controller
	if _, err := c.Run(context.Background(), "x", gametype.Quiz); err == nil {
		t.Fatal("expected configuration error")
	}
}
