package report

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Band labels patients by how many days their inflammation stayed above
// the protocol threshold. Bands are ordered by ascending MinDays.
type Band struct {
	Name    string `yaml:"name" json:"name"`
	MinDays int    `yaml:"min_days" json:"min_days"`
}

// Protocol is the study's threshold protocol: the inflammation threshold
// to count against and the severity bands derived from the count.
type Protocol struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Bands     []Band  `yaml:"bands" json:"bands"`
}

func LoadProtocol(path string) (Protocol, error) {
	if path == "" {
		return DefaultProtocol(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultProtocol(), err
	}

	var proto Protocol
	if err := yaml.Unmarshal(content, &proto); err != nil {
		return Protocol{}, err
	}

	if len(proto.Bands) == 0 {
		return Protocol{}, errors.New("protocol has no severity bands")
	}

	return proto, nil
}

func DefaultProtocol() Protocol {
	return Protocol{
		Threshold: 1.0,
		Bands: []Band{
			{Name: "normal", MinDays: 0},
			{Name: "elevated", MinDays: 3},
			{Name: "severe", MinDays: 7},
		},
	}
}

// Classify returns the severity band for a days-above-threshold count:
// the band with the largest MinDays not exceeding the count.
func (p Protocol) Classify(daysAbove int) string {
	name := ""
	best := -1
	for _, band := range p.Bands {
		if daysAbove >= band.MinDays && band.MinDays > best {
			name = band.Name
			best = band.MinDays
		}
	}
	return name
}
