package archsynth_test

import (
	"context"
	"fmt"

	"github.com/aretw0/archsynth"
	"github.com/aretw0/archsynth/internal/testutils"
	"github.com/aretw0/archsynth/pkg/pipeline"
)

func ExampleEngine_Execute() {
	eng := archsynth.New()
	fn, _ := eng.AddLayer("functional")
	x := fn.Graph().AddNode("component", "x", nil)

	_ = eng.AddStep(pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform", "arm", "x86")))
	_ = eng.AddStep(pipeline.Choose("functional", "platform", testutils.First("functional", "platform")))
	_ = eng.AddStep(pipeline.Validate("functional", testutils.Forbid("functional", "platform", "arm")))

	res, err := eng.Execute(context.Background(), "", archsynth.Topological)
	if err != nil {
		fmt.Println(err)
		return
	}
	v, _ := fn.Value(x, "platform")
	fmt.Println(res.Report.Outcome, v, res.Report.Stats.Rollbacks)
	// Output: success x86 1
}
