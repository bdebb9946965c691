// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	CourseNotFoundId Id = iota + 1
	ManifestParseErrorId
	LessonNotFoundId
	FenceInvalidId
	PrereqCycleId
	ConfigLoadFailedId
	BuildFailedId
	ProgressStoreFailedId
	AddressInUseId
	TranscriptPtyUnavailableId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	courseNotFoundIssue = &Issue{
		id: CourseNotFoundId,
		mdMsg: `
# No course found!

We searched for a course.yml manifest but couldn't find one.

## Search locations (in order of precedence):
1. The path given with --course
2. Current directory
3. Parent directories up to the filesystem root

## Things you can try:
- Scaffold a new course in the current directory:
~~~
$ kurso init "Perl for Beginners"
~~~

- Or move into an existing course first:
~~~
$ cd /path/to/your/course
$ kurso lint
~~~

## Example course.yml structure:
~~~yaml
title: "Perl for Beginners"
docs_dir: docs
site_dir: site

nav:
  - Getting started: index.md
  - Scalars: basics/scalars.md
  - Arrays and hashes: basics/collections.md
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse course.yml!

Your course manifest contains syntax errors or invalid configuration.

## Common issues:
- Invalid YAML syntax (bad indentation, unquoted colons, tabs)
- Unknown field names
- Nav entries that are not "Title: path.md" pairs
- Missing required fields (title, nav)

## Things you can try:
- Check the error message above for the specific line
- Run with verbose mode for more details:
~~~
$ kurso --verbose lint
~~~

## Example of a valid manifest:
~~~yaml
title: "Perl for Beginners"
docs_dir: docs

nav:
  - Getting started: index.md
  - Scalars: basics/scalars.md

theme:
  palette: auto
  syntax_style: monokai
~~~`,
	}

	lessonNotFoundIssue = &Issue{
		id: LessonNotFoundId,
		mdMsg: `
# Lesson not found!

The lesson you specified is not part of this course.

## Things you can try:
- List all lessons with their slugs:
~~~
$ kurso stats
~~~

- Check for typos in the lesson slug or path
- Verify the lesson appears in the nav section of course.yml
- Use tab completion:
~~~
$ kurso study <TAB>
~~~`,
	}

	fenceInvalidIssue = &Issue{
		id: FenceInvalidId,
		mdMsg: `
# Invalid interactive block!

A fenced interactive block in one of your lessons failed validation.

## Interactive block types:
- **quiz**: multiple-choice questions
- **terminal**: simulated terminal sessions
- **command-builder**: interactive command assembly
- **exercise**: coding exercises with hints and a solution
- **code-walkthrough**: annotated code listings

## Things you can try:
- Run the linter to see every problem with its file and line:
~~~
$ kurso lint
~~~

- Check the YAML body for indentation mistakes

## Example of a valid quiz block:
~~~markdown
` + "```quiz" + `
question: "Which sigil denotes a Perl scalar?"
options:
  - text: "$"
    correct: true
  - text: "@"
  - text: "%"
explanation: "Scalars use $, arrays use @, hashes use %."
` + "```" + `
~~~`,
	}

	prereqCycleIssue = &Issue{
		id: PrereqCycleId,
		mdMsg: `
# Prerequisite cycle detected!

Lesson prerequisites form a cycle, so no valid study order exists.

## Example of a cycle:
~~~yaml
# docs/basics/scalars.md
---
id: scalars
requires: [collections]
---

# docs/basics/collections.md
---
id: collections
requires: [scalars]   # Cycle: scalars -> collections -> scalars
---
~~~

## Things you can try:
- Review the requires fields in your lesson frontmatter
- Remove the circular prerequisite
- Use a linear chain instead`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the kurso configuration file.

## Configuration file locations:
- Linux: ~/.config/kurso/config.cue
- macOS: ~/Library/Application Support/kurso/config.cue
- Windows: %APPDATA%\kurso\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ kurso config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/kurso/config.cue
~~~

## Example configuration:
~~~cue
site_dir: "site"
strict: false

serve: {
  addr: "127.0.0.1:8765"
}

ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Site build failed!

The course could not be rendered to static HTML.

## Common causes:
- Lint errors in lesson content (run ` + "`kurso lint`" + ` first)
- The site directory is not writable
- A lesson file disappeared between discovery and rendering

## Things you can try:
- Run with verbose mode for more details:
~~~
$ kurso --verbose build
~~~

- Fix lint findings and rebuild
- Check permissions on the site directory`,
	}

	progressStoreFailedIssue = &Issue{
		id: ProgressStoreFailedId,
		mdMsg: `
# Cannot open the progress database!

Study progress is kept in a local SQLite database that could not be opened.

## Database location:
- Linux: ~/.local/share/kurso/progress.db
- macOS: ~/Library/Application Support/kurso/progress.db
- Windows: %LOCALAPPDATA%\kurso\progress.db

## Things you can try:
- Check that the directory exists and is writable
- If the file is corrupted, remove it to start fresh (progress is lost):
~~~
$ rm ~/.local/share/kurso/progress.db
~~~

- Point kurso at a different database:
~~~
$ kurso --progress-db /tmp/progress.db study
~~~`,
	}

	addressInUseIssue = &Issue{
		id: AddressInUseId,
		mdMsg: `
# Address already in use!

The preview server could not bind its listen address.

## Things you can try:
- Find out what is using the port:
~~~
$ lsof -i :8765
~~~

- Pick a different port:
~~~
$ kurso preview --addr 127.0.0.1:9000
~~~

- Or set it permanently in your configuration:
~~~cue
serve: {
  addr: "127.0.0.1:9000"
}
~~~`,
	}

	transcriptPtyUnavailableIssue = &Issue{
		id: TranscriptPtyUnavailableId,
		mdMsg: `
# Transcript recording needs a PTY!

Recording runs your shell inside a pseudo-terminal, which is not available here.

## Common causes:
- Running on Windows (recording is Unix-only)
- Running without a controlling terminal (CI, cron, pipes)

## Things you can try:
- Record on Linux or macOS in a real terminal
- Replay or check an existing transcript instead:
~~~
$ kurso transcript play docs/basics/scalars.cast
$ kurso transcript check docs/basics/scalars.cast
~~~`,
		extLinks: []HttpLink{"https://man7.org/linux/man-pages/man7/pty.7.html"},
	}

	issues = map[Id]*Issue{
		courseNotFoundIssue.Id():           courseNotFoundIssue,
		manifestParseErrorIssue.Id():       manifestParseErrorIssue,
		lessonNotFoundIssue.Id():           lessonNotFoundIssue,
		fenceInvalidIssue.Id():             fenceInvalidIssue,
		prereqCycleIssue.Id():              prereqCycleIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		buildFailedIssue.Id():              buildFailedIssue,
		progressStoreFailedIssue.Id():      progressStoreFailedIssue,
		addressInUseIssue.Id():             addressInUseIssue,
		transcriptPtyUnavailableIssue.Id(): transcriptPtyUnavailableIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
