package memstore

import (
	"context"
	"testing"

	"github.com/cognicore/textsuite/pkg/textsuite/report"
	"github.com/cognicore/textsuite/pkg/textsuite/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, New())
}

func TestReturnedReportsAreCopies(t *testing.T) {
	ctx := context.Background()
	st := New()
	r := storetest.Sample(report.New(), "copy.txt")
	if err := st.SaveReport(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.Result.Topics[0].Keywords[0].Word = "changed"
	got.Result.DominantTopic.TopicID = 9

	again, err := st.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Result.Topics[0].Keywords[0].Word != "cat" {
		t.Error("Mutating a returned report changed the stored keywords")
	}
	if again.Result.DominantTopic.TopicID != 2 {
		t.Error("Mutating a returned report changed the stored dominant topic")
	}
}
