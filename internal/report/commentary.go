package report

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Commentary is caller-supplied narrative attached to a report. It lives
// outside the pipeline; the renderers only interpolate it.
type Commentary struct {
	Title    string              `yaml:"title"`
	Sections []CommentarySection `yaml:"sections"`
}

// CommentarySection is one narrative block.
type CommentarySection struct {
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
}

// LoadCommentary reads a commentary YAML file.
func LoadCommentary(path string) (*Commentary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: read commentary %s", path)
	}
	var c Commentary
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrapf(err, "report: parse commentary %s", path)
	}
	return &c, nil
}
