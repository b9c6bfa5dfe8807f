package command

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tbran/voltbot/internal/rank"
)

//go:embed tourformats.yaml
var tourFormatsRaw []byte

// TourFormat is one named tournament configuration.
type TourFormat struct {
	Key     string   `yaml:"key"`
	Aliases []string `yaml:"aliases"`
	Format  string   `yaml:"tourformat"`
	Name    string   `yaml:"tourname"`
	Rules   string   `yaml:"tourrules"`
	Note    string   `yaml:"tournote"`
}

type refusedFormat struct {
	Aliases []string `yaml:"aliases"`
	Reason  string   `yaml:"reason"`
}

// TourFormats is the format catalog with its alias index.
type TourFormats struct {
	Default string
	formats []TourFormat
	byAlias map[string]*TourFormat
	refused map[string]string
}

type tourFormatsFile struct {
	Default string          `yaml:"default"`
	Formats []TourFormat    `yaml:"formats"`
	Refused []refusedFormat `yaml:"refused"`
}

// LoadTourFormats parses the embedded catalog.
func LoadTourFormats() (*TourFormats, error) {
	var file tourFormatsFile
	if err := yaml.Unmarshal(tourFormatsRaw, &file); err != nil {
		return nil, fmt.Errorf("parse tour formats: %w", err)
	}
	tf := &TourFormats{
		Default: file.Default,
		formats: file.Formats,
		byAlias: make(map[string]*TourFormat),
		refused: make(map[string]string),
	}
	for i := range tf.formats {
		f := &tf.formats[i]
		tf.byAlias[rank.ToID(f.Key)] = f
		for _, alias := range f.Aliases {
			tf.byAlias[rank.ToID(alias)] = f
		}
	}
	for _, r := range file.Refused {
		for _, alias := range r.Aliases {
			tf.refused[rank.ToID(alias)] = r.Reason
		}
	}
	if _, ok := tf.byAlias[tf.Default]; !ok {
		return nil, fmt.Errorf("default tour format %q not in catalog", tf.Default)
	}
	return tf, nil
}

func (tf *TourFormats) lookup(name string) *TourFormat {
	return tf.byAlias[rank.ToID(name)]
}

// Command builds the tour handler over this catalog. The started flag is
// fed by the server's tournament updates, so the guard holds even for
// tours created by hand.
func (tf *TourFormats) Command() Handler {
	return func(ctx Ctx, arg, by, room string) {
		if arg == "reset" || arg == "restart" {
			ctx.SetTournamentActive(false)
			ctx.Say(room, "Tournament creation should be working again.")
			return
		}
		if ctx.TournamentActive() {
			ctx.Say(room, "A tournament has already been started.")
			return
		}

		args := strings.Split(arg, ", ")
		switch strings.ToLower(args[0]) {
		case "":
			args[0] = tf.Default
		case "double", "double elim", "double elimination":
			args = []string{tf.Default, "elimination", "128", "2"}
		case "random", "random vgc":
			args[0] = tf.formats[randIntn(len(tf.formats))].Key
		}

		if reason, ok := tf.refused[rank.ToID(args[0])]; ok {
			ctx.Say(room, reason)
			return
		}

		tourType := "elimination"
		if len(args) > 1 && args[1] != "" {
			tourType = args[1]
		}
		playerCap := "128"
		rounds := "1"
		if tourType == "double" {
			tourType, rounds = "elimination", "2"
		}
		if len(args) > 2 {
			if _, err := strconv.Atoi(args[2]); err == nil {
				playerCap = args[2]
			}
		}
		if len(args) > 3 {
			if _, err := strconv.Atoi(args[3]); err == nil {
				rounds = args[3]
			}
		}

		format := tf.lookup(args[0])
		tourformat, tourname := args[0], ""
		if format != nil {
			tourformat, tourname = format.Format, format.Name
		}

		create := "/tour create " + tourformat + ", " + tourType + ", " + playerCap + ", " + rounds
		if tourname != "" {
			create += ", " + tourname
		}
		ctx.Say(room, create)

		if format != nil {
			if format.Rules != "" {
				ctx.Say(room, "/tour rules "+format.Rules)
			}
			if format.Note != "" {
				ctx.Say(room, "/wall "+format.Note)
			}
		}
	}
}
