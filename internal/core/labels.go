package core

import "fmt"

// LabelSet is the ordered list of classes; index i names output i of the
// classifier. It is built once at startup and never modified.
type LabelSet struct {
	labels []string
}

var DefaultSnakeLabels = []string{
	"cobra",
	"common Krait",
	"Hump nosed pit viper",
	"Python",
	"Rat snake",
	"russell's viper",
	"Saw Scaled Viper",
}

func NewLabelSet(labels []string) (LabelSet, error) {
	if len(labels) == 0 {
		return LabelSet{}, fmt.Errorf("label set must not be empty")
	}

	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if label == "" {
			return LabelSet{}, fmt.Errorf("label set contains an empty label")
		}
		if _, ok := seen[label]; ok {
			return LabelSet{}, fmt.Errorf("label set contains duplicate label '%s'", label)
		}
		seen[label] = struct{}{}
	}

	return LabelSet{labels: append([]string(nil), labels...)}, nil
}

func (l LabelSet) Len() int {
	return len(l.labels)
}

func (l LabelSet) At(i int) string {
	return l.labels[i]
}

// Labels returns a copy of the labels in output order.
func (l LabelSet) Labels() []string {
	return append([]string(nil), l.labels...)
}
