// Package output renders gitfleet results as JSON or plain text.
package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/git"
)

// Format selects how results are rendered.
type Format string

// Supported output formats.
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates an --output value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatText:
		return Format(s), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected json or text)", s)
	}
}

// Printer writes results in one format.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Paths writes a list of repository paths, one per line in text mode.
func (p *Printer) Paths(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	if p.format == FormatJSON {
		return WriteJSON(p.w, paths)
	}
	for _, path := range paths {
		if _, err := fmt.Fprintln(p.w, path); err != nil {
			return err
		}
	}
	return nil
}

// Status writes a repository status. Text mode prints porcelain-style lines.
func (p *Printer) Status(st git.RepoStatus) error {
	if p.format == FormatJSON {
		return WriteJSON(p.w, st)
	}
	if st.IsClean {
		_, err := fmt.Fprintf(p.w, "%s: clean\n", st.Path)
		return err
	}
	if _, err := fmt.Fprintf(p.w, "%s:\n", st.Path); err != nil {
		return err
	}
	for _, f := range st.Files {
		if _, err := fmt.Fprintf(p.w, "  %-10s %s\n", f.Status, f.Path); err != nil {
			return err
		}
	}
	return nil
}

// Infos writes repository summaries. Text mode prints a key=value block
// per repository separated by blank lines.
func (p *Printer) Infos(infos []git.RepositoryInfo) error {
	if infos == nil {
		infos = []git.RepositoryInfo{}
	}
	if p.format == FormatJSON {
		return WriteJSON(p.w, infos)
	}
	for i, info := range infos {
		if i > 0 {
			if _, err := fmt.Fprintln(p.w); err != nil {
				return err
			}
		}
		if err := WriteAll(p.w, infoPairs(info)); err != nil {
			return err
		}
	}
	return nil
}

func infoPairs(info git.RepositoryInfo) [][2]string {
	pairs := [][2]string{
		{"Path", info.Path},
		{"Name", info.Name},
		{"Branch", info.CurrentBranch},
		{"Dirty", strconv.FormatBool(info.IsDirty)},
		{"UncommittedChanges", strconv.Itoa(info.UncommittedChanges)},
		{"UntrackedFiles", strconv.Itoa(info.UntrackedFiles)},
		{"Ahead", strconv.Itoa(int(info.Ahead))},
		{"Behind", strconv.Itoa(int(info.Behind))},
	}
	if c := info.LastCommit; c != nil {
		pairs = append(pairs,
			[2]string{"LastCommit", c.ShortHash},
			[2]string{"LastCommitAuthor", c.Author},
			[2]string{"LastCommitDate", time.Unix(c.Timestamp, 0).UTC().Format(time.RFC3339)},
		)
	}
	return pairs
}

// Branches writes a branch listing. Text mode marks the current branch
// with an asterisk and shows the upstream in brackets.
func (p *Printer) Branches(branches []git.BranchInfo) error {
	if branches == nil {
		branches = []git.BranchInfo{}
	}
	if p.format == FormatJSON {
		return WriteJSON(p.w, branches)
	}
	for _, b := range branches {
		marker := " "
		if b.IsCurrent {
			marker = "*"
		}
		line := marker + " " + b.Name
		if b.Upstream != "" {
			line += " [" + b.Upstream + "]"
		}
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}
	return nil
}

// Commit writes the id of a new commit.
func (p *Printer) Commit(path, hash string) error {
	if p.format == FormatJSON {
		return WriteJSON(p.w, map[string]string{"path": path, "commit": hash})
	}
	_, err := fmt.Fprintf(p.w, "%s %s\n", path, hash)
	return err
}
