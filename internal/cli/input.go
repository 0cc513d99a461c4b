package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/petcare-labs/petcare/internal/errors"
)

// Accepted layouts for --at style flags, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseID parses a record ID argument.
func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidField(kind, "id", "invalid id: "+strconv.Quote(raw))
	}
	return id, nil
}

// parseTime parses a user-supplied date-time in the configured zone.
func (c *CLI) parseTime(field, raw string) (time.Time, error) {
	loc := c.location()
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewInvalidField("input", field,
		"cannot parse "+strconv.Quote(raw)+"; use YYYY-MM-DD HH:MM or RFC 3339")
}

// currentTime is the CLI's notion of the current time, in the configured zone.
func (c *CLI) currentTime() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now().In(c.location())
}

// location is the configured household zone. An invalid zone falls back to
// local time; the gateway rejects it at startup anyway.
func (c *CLI) location() *time.Location {
	if c.cfg == nil {
		return time.Local
	}
	loc, err := c.cfg.Location()
	if err != nil {
		return time.Local
	}
	return loc
}

// loadPatch decodes a YAML record file into patch. "-" reads stdin.
func (c *CLI) loadPatch(path string, patch any) error {
	if path == "" {
		return nil
	}
	var r io.Reader = c.in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.NewInvalidField("input", "file", err.Error())
		}
		defer f.Close()
		r = f
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(patch); err != nil && err != io.EOF {
		return errors.NewInvalidField("input", "file", "invalid YAML: "+err.Error())
	}
	return nil
}

// Flag overlays. Each returns nil unless the flag was set on the command
// line, so unset flags leave a patch field untouched.

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func changedInt64(cmd *cobra.Command, name string) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt64(name)
	return &v
}

func changedBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func (c *CLI) changedTime(cmd *cobra.Command, name string) (*time.Time, error) {
	raw := changedString(cmd, name)
	if raw == nil {
		return nil, nil
	}
	t, err := c.parseTime(name, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// overlay replaces *dst with v when v is set.
func overlay[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

// confirm asks a yes/no question on the CLI's input. Anything but y/yes is no.
func (c *CLI) confirm(question string) bool {
	fmt.Fprintf(c.out, "%s [y/N]: ", question)
	switch strings.ToLower(c.readLine()) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
