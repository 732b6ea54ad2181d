// Package cli implements the small flag-parsing layer used by the splc
// binaries. Besides plain flags it understands toggle groups of the form
// -W<name>/-Wno-<name>, which the driver maps onto warning and feature
// switches.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"
)

type Value interface {
	String() string
	Set(string) error
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	if s == "" {
		*v.p = true
		return nil
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean value %q: %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }

type intValue struct{ p *int }

func (v *intValue) Set(s string) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer value %q", s)
	}
	*v.p = val
	return nil
}
func (v *intValue) String() string { return strconv.Itoa(*v.p) }

type Flag struct {
	Name      string
	Shorthand string
	Usage     string
	Value     Value
	DefValue  string
	ArgName   string
}

// Toggle is one switch within a prefixed group, e.g. warning "unused-var"
// under the "W" prefix.
type Toggle struct {
	Name    string
	Usage   string
	Enabled bool
}

// ToggleGroup is a family of -<prefix><name> / -<prefix>no-<name> switches.
// Set is invoked once per occurrence on the command line, in order.
type ToggleGroup struct {
	Prefix  string
	Title   string
	Toggles []Toggle
	Set     func(name string, enabled bool) error
}

type FlagSet struct {
	name       string
	flags      map[string]*Flag
	shorthands map[string]*Flag
	groups     []*ToggleGroup
	args       []string
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:       name,
		flags:      make(map[string]*Flag),
		shorthands: make(map[string]*Flag),
	}
}

func (f *FlagSet) Args() []string { return f.args }

func (f *FlagSet) String(p *string, name, shorthand, value, usage, argName string) {
	*p = value
	f.add(&Flag{Name: name, Shorthand: shorthand, Usage: usage,
		Value: &stringValue{p}, DefValue: value, ArgName: argName})
}

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.add(&Flag{Name: name, Shorthand: shorthand, Usage: usage,
		Value: &boolValue{p}, DefValue: strconv.FormatBool(value)})
}

func (f *FlagSet) Int(p *int, name, shorthand string, value int, usage, argName string) {
	*p = value
	f.add(&Flag{Name: name, Shorthand: shorthand, Usage: usage,
		Value: &intValue{p}, DefValue: strconv.Itoa(value), ArgName: argName})
}

func (f *FlagSet) Group(group *ToggleGroup) {
	f.groups = append(f.groups, group)
}

func (f *FlagSet) add(flag *Flag) {
	if flag.Name == "" {
		panic("flag name cannot be empty")
	}
	if _, ok := f.flags[flag.Name]; ok {
		panic("flag redefined: " + flag.Name)
	}
	f.flags[flag.Name] = flag
	if flag.Shorthand != "" {
		if _, ok := f.shorthands[flag.Shorthand]; ok {
			panic("shorthand redefined: " + flag.Shorthand)
		}
		f.shorthands[flag.Shorthand] = flag
	}
}

func (f *FlagSet) Parse(arguments []string) error {
	f.args = nil
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		switch {
		case arg == "--":
			f.args = append(f.args, arguments[i+1:]...)
			return nil
		case len(arg) < 2 || arg[0] != '-':
			f.args = append(f.args, arg)
		case strings.HasPrefix(arg, "--"):
			if err := f.parseLong(arg[2:], arguments, &i); err != nil {
				return err
			}
		default:
			if err := f.parseShort(arg[1:], arguments, &i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *FlagSet) parseLong(body string, arguments []string, i *int) error {
	name, value, hasValue := strings.Cut(body, "=")
	flag, ok := f.flags[name]
	if !ok {
		return fmt.Errorf("unknown flag: --%s", name)
	}
	if hasValue {
		return flag.Value.Set(value)
	}
	if _, isBool := flag.Value.(*boolValue); isBool {
		return flag.Value.Set("")
	}
	if *i+1 >= len(arguments) {
		return fmt.Errorf("flag needs an argument: --%s", name)
	}
	*i++
	return flag.Value.Set(arguments[*i])
}

func (f *FlagSet) parseShort(body string, arguments []string, i *int) error {
	// Toggle groups first: -Wunused-var, -Wno-unused-var, -Fcomments.
	for _, group := range f.groups {
		if !strings.HasPrefix(body, group.Prefix) || len(body) <= len(group.Prefix) {
			continue
		}
		name := body[len(group.Prefix):]
		enabled := true
		if strings.HasPrefix(name, "no-") {
			name = strings.TrimPrefix(name, "no-")
			enabled = false
		}
		return group.Set(name, enabled)
	}

	shorthand := body[:1]
	flag, ok := f.shorthands[shorthand]
	if !ok {
		return fmt.Errorf("unknown flag: -%s", body)
	}
	if _, isBool := flag.Value.(*boolValue); isBool {
		return flag.Value.Set("")
	}
	if value := body[1:]; value != "" {
		return flag.Value.Set(value)
	}
	if *i+1 >= len(arguments) {
		return fmt.Errorf("flag needs an argument: -%s", shorthand)
	}
	*i++
	return flag.Value.Set(arguments[*i])
}

type App struct {
	Name        string
	Synopsis    string
	Description string
	FlagSet     *FlagSet
	Action      func(args []string) error
}

func NewApp(name string) *App {
	return &App{Name: name, FlagSet: NewFlagSet(name)}
}

func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintf(os.Stderr, "Usage: %s %s\nRun '%s --help' for available options.\n",
			a.Name, a.Synopsis, a.Name)
		return err
	}
	if help {
		a.printHelp(os.Stdout)
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

func (a *App) printHelp(w *os.File) {
	width := terminalWidth()
	var sb strings.Builder

	fmt.Fprintf(&sb, "Usage: %s %s\n", a.Name, a.Synopsis)
	if a.Description != "" {
		sb.WriteString("\n")
		for _, line := range wrapText(a.Description, width-4) {
			fmt.Fprintf(&sb, "    %s\n", line)
		}
	}

	flags := make([]*Flag, 0, len(a.FlagSet.flags))
	for _, flag := range a.FlagSet.flags {
		flags = append(flags, flag)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })

	leftWidth := 0
	for _, flag := range flags {
		if l := len(flagLabel(flag)); l > leftWidth {
			leftWidth = l
		}
	}
	for _, group := range a.FlagSet.groups {
		for _, t := range group.Toggles {
			if l := len(group.Prefix+"no-"+t.Name) + 1; l > leftWidth {
				leftWidth = l
			}
		}
	}

	sb.WriteString("\nOptions\n")
	for _, flag := range flags {
		writeEntry(&sb, flagLabel(flag), flag.Usage, leftWidth, width)
	}

	for _, group := range a.FlagSet.groups {
		fmt.Fprintf(&sb, "\n%s (-%s<name>, -%sno-<name>)\n", group.Title, group.Prefix, group.Prefix)
		toggles := make([]Toggle, len(group.Toggles))
		copy(toggles, group.Toggles)
		sort.Slice(toggles, func(i, j int) bool { return toggles[i].Name < toggles[j].Name })
		for _, t := range toggles {
			state := "off"
			if t.Enabled {
				state = "on"
			}
			writeEntry(&sb, "-"+group.Prefix+t.Name, fmt.Sprintf("%s (default %s)", t.Usage, state), leftWidth, width)
		}
	}

	fmt.Fprint(w, sb.String())
}

func flagLabel(flag *Flag) string {
	var sb strings.Builder
	if flag.Shorthand != "" {
		fmt.Fprintf(&sb, "-%s, ", flag.Shorthand)
	}
	fmt.Fprintf(&sb, "--%s", flag.Name)
	if flag.ArgName != "" {
		fmt.Fprintf(&sb, " <%s>", flag.ArgName)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, label, usage string, leftWidth, termWidth int) {
	usageWidth := termWidth - leftWidth - 8
	if usageWidth < 10 {
		usageWidth = 10
	}
	lines := wrapText(usage, usageWidth)
	if len(lines) == 0 {
		lines = []string{""}
	}
	fmt.Fprintf(sb, "    %-*s  %s\n", leftWidth, label, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(sb, "    %-*s  %s\n", leftWidth, "", line)
	}
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 20 {
		return 80
	}
	return width
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var current strings.Builder
	for _, word := range words {
		if current.Len() > 0 && current.Len()+1+len(word) > maxWidth {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
