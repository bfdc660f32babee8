package activities

import (
	"context"
	"testing"

	"lexflow/internal/models"
	"lexflow/internal/parser"
)

const judgmentLikeText = `A versus B
Criminal Appeal No. 42 of 2019
JUDGMENT
The appeal is dismissed.`

func TestClassifyHonorsForcedDocumentType(t *testing.T) {
	a := &Activities{}
	out, err := a.ClassifyDocumentActivity(context.Background(), ClassifyDocumentInput{
		JobID:     "job1",
		Text:      judgmentLikeText,
		ForceType: models.DocTypeStatute,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.DocumentType != models.DocTypeStatute {
		t.Fatalf("forced type ignored, got %s", out.DocumentType)
	}
}

func TestClassifyHonorsForcedStrategy(t *testing.T) {
	a := &Activities{}
	out, err := a.ClassifyDocumentActivity(context.Background(), ClassifyDocumentInput{
		JobID:         "job1",
		Text:          judgmentLikeText,
		ForceType:     models.DocTypeStatute,
		ForceStrategy: string(parser.StrategySchedule),
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Strategy != parser.StrategySchedule {
		t.Fatalf("forced strategy ignored, got %s", out.Strategy)
	}
}

func TestClassifyDetectsWhenNotForced(t *testing.T) {
	a := &Activities{}
	out, err := a.ClassifyDocumentActivity(context.Background(), ClassifyDocumentInput{
		JobID: "job1",
		Text:  judgmentLikeText,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.DocumentType != models.DocTypeJudgment {
		t.Fatalf("expected detection to run, got %s", out.DocumentType)
	}
}
