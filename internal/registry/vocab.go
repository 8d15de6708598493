package registry

// EventNames is the closed set of event labels the registry uses, in the
// order the pivoted date columns appear in the output table.
var EventNames = []string{
	"Intervention start date",
	"Intervention end date",
	"Evaluation start",
	"Evaluation end",
	"Final data analysis end",
	"Publication of interim results",
	"Publication of final results",
	"Not Set",
	"Other",
}

// EvaluationTypes is the closed set of evaluation type labels, in output
// column order.
var EvaluationTypes = []string{
	"Impact evaluation",
	"Process evaluation",
	"Value for money evaluation",
	"Other",
}

var (
	eventNameSet      = makeSet(EventNames)
	evaluationTypeSet = makeSet(EvaluationTypes)
)

func makeSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// KnownEventName reports whether name belongs to the event vocabulary.
func KnownEventName(name string) bool {
	return eventNameSet[name]
}

// KnownEvaluationType reports whether name belongs to the evaluation type
// vocabulary.
func KnownEvaluationType(name string) bool {
	return evaluationTypeSet[name]
}
