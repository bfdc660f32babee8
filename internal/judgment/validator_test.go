package judgment

import "testing"

const validatorSource = `The learned counsel for the appellant argued that the confession was
extracted under duress and therefore cannot form the basis of a
conviction. We find no merit in this submission.`

func TestValidateQuoteExact(t *testing.T) {
	if !ValidateQuote("cannot form the basis of a conviction", validatorSource, DefaultQuoteThreshold) {
		t.Fatal("verbatim quote rejected")
	}
}

func TestValidateQuoteNormalized(t *testing.T) {
	// Case and whitespace differences come from PDF extraction, not
	// fabrication.
	if !ValidateQuote("The  Confession   was extracted under DURESS", validatorSource, DefaultQuoteThreshold) {
		t.Fatal("normalization-equivalent quote rejected")
	}
}

func TestValidateQuoteOCRTypo(t *testing.T) {
	if !ValidateQuote("the confession was extraeted under duress", validatorSource, DefaultQuoteThreshold) {
		t.Fatal("near-verbatim quote with one OCR typo rejected")
	}
}

func TestValidateQuoteParaphraseRejected(t *testing.T) {
	if ValidateQuote("the judges completely disagreed with every point raised by both sides", validatorSource, DefaultQuoteThreshold) {
		t.Fatal("paraphrase accepted")
	}
}

func TestValidateQuoteEmptyRejected(t *testing.T) {
	if ValidateQuote("", validatorSource, DefaultQuoteThreshold) {
		t.Fatal("empty quote accepted")
	}
	if ValidateQuote("   ", validatorSource, DefaultQuoteThreshold) {
		t.Fatal("blank quote accepted")
	}
}

func TestNormalizeQuote(t *testing.T) {
	got := NormalizeQuote("  The\tCONFESSION  was \n extracted ")
	if got != "the confession was extracted" {
		t.Fatalf("got %q", got)
	}
}

func TestBestQuoteScoreOrdering(t *testing.T) {
	exact := BestQuoteScore("cannot form the basis", validatorSource)
	far := BestQuoteScore("entirely unrelated sentence about taxation rates for the year", validatorSource)
	if exact < far {
		t.Fatalf("exact %f < unrelated %f", exact, far)
	}
	if exact < DefaultQuoteThreshold {
		t.Fatalf("exact substring scored %f", exact)
	}
}
