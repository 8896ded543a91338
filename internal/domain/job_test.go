package domain

import "testing"

func TestJobCost(t *testing.T) {
	testCases := []struct {
		kind JobKind
		want int
	}{
		{JobKindImage, 20},
		{JobKindVideo, 50},
		{JobKind("AUDIO"), 0},
	}
	for _, tc := range testCases {
		if got := JobCost(tc.kind); got != tc.want {
			t.Errorf("JobCost(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestJobStatusTerminal(t *testing.T) {
	if JobStatusPending.Terminal() || JobStatusProcessing.Terminal() {
		t.Fatal("pending/processing must not be terminal")
	}
	if !JobStatusDone.Terminal() || !JobStatusFailed.Terminal() {
		t.Fatal("done/failed must be terminal")
	}
}

func TestTransactionKindFor(t *testing.T) {
	if TransactionKindFor(JobKindImage) != TxnKindImageModify {
		t.Fatal("image jobs debit as IMAGE_MODIFY")
	}
	if TransactionKindFor(JobKindVideo) != TxnKindVideoGenerate {
		t.Fatal("video jobs debit as VIDEO_GENERATE")
	}
}

func TestValidSide(t *testing.T) {
	for _, side := range []AssetSide{"", AssetSideFront, AssetSideRear, AssetSideLeft, AssetSideRight} {
		if !ValidSide(side) {
			t.Errorf("side %q rejected", side)
		}
	}
	if ValidSide("TOP") {
		t.Error("unknown side accepted")
	}
}

func TestKnownCatalogKeys(t *testing.T) {
	if !KnownTuningPreset("wheels") || KnownTuningPreset("jetpack") {
		t.Fatal("tuning preset lookup broken")
	}
	if !KnownVideoEffect("360_spin") || KnownVideoEffect("explode") {
		t.Fatal("video effect lookup broken")
	}
}
