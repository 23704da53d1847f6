// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ManifestNotFoundId Id = iota + 1
	LockfileInvalidId
	CommandNotFoundId
	NotExecutableId
	NotInBundleId
	BinstubConflictId
	EnvironmentCorruptedId
	InstallFailedId
	ConfigLoadFailedId
	LoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
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
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No Bundlefile found!

We searched the current directory and every parent directory for a
Bundlefile but couldn't find one.

## Search order:
1. The --manifest flag
2. The BUNDLERUN_MANIFEST environment variable or the 'manifest' config option
3. ./Bundlefile, then each parent directory

## Things you can try:
- Run the command from your project directory
- Point at the manifest explicitly:
~~~
$ bundlerun exec --manifest path/to/Bundlefile rake
~~~`,
	}

	lockfileInvalidIssue = &Issue{
		id: LockfileInvalidId,
		mdMsg: `
# The lockfile could not be read!

bundlerun exec never resolves dependencies itself: it reads the resolution
recorded in Bundlefile.lock next to your manifest.

## Things you can try:
- Re-create the lockfile:
~~~
$ bundlerun install
~~~
- Check that every [[package]] entry has a name and an install_root`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found!

The command is not provided by any package in the bundle and is not on
your PATH.

## Things you can try:
- Install the missing package executables:
~~~
$ bundlerun install
~~~
- Check the spelling of the command
- Run a shell command string instead:
~~~
$ bundlerun exec 'cd tmp && rake db:migrate'
~~~`,
	}

	notExecutableIssue = &Issue{
		id: NotExecutableId,
		mdMsg: `
# File is not executable!

The command resolved to a file that does not have the executable bit set.

## Things you can try:
~~~
$ chmod +x ./path/to/script
~~~`,
	}

	notInBundleIssue = &Issue{
		id: NotInBundleId,
		mdMsg: `
# Package is not in the bundle!

A binstub on your PATH launches an executable of a package that is not part
of the current resolution.

## Things you can try:
- Add the package to your Bundlefile and run 'bundlerun install'
- Remove the stale binstub`,
	}

	binstubConflictIssue = &Issue{
		id: BinstubConflictId,
		mdMsg: `
# Binstub created for a different package!

A system-wide binstub with the same name as a bundled executable was found
first on PATH.

## Things you can try:
- Generate a binstub for the bundled package:
~~~
$ bundlerun binstub <package>
~~~`,
	}

	environmentCorruptedIssue = &Issue{
		id: EnvironmentCorruptedId,
		mdMsg: `
# Inherited environment is malformed!

One of BUNDLERUN_LIB, BUNDLERUN_PATH, PATH or BUNDLERUN_OPT contains a value
that cannot be split (a NUL byte or an unterminated quote).

## Things you can try:
- Inspect the variables with 'env'
- Unset the broken variable and try again`,
	}

	installFailedIssue = &Issue{
		id: InstallFailedId,
		mdMsg: `
# Automatic install failed!

auto_install is enabled and some packages were missing, but the install
command failed.

## Things you can try:
- Run the install command yourself to see the full output
- Check the 'install_command' option in your config.cue`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your config.cue
- Show the effective configuration:
~~~
$ bundlerun config show
~~~`,
	}

	loadFailedIssue = &Issue{
		id: LoadFailedId,
		mdMsg: `
# Failed to load command!

The script was run in-process by the embedded shell and failed before it
could finish.

## Things you can try:
- Run it in a separate process instead:
~~~cue
disable_exec_load: true
~~~`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():     manifestNotFoundIssue,
		lockfileInvalidIssue.Id():      lockfileInvalidIssue,
		commandNotFoundIssue.Id():      commandNotFoundIssue,
		notExecutableIssue.Id():        notExecutableIssue,
		notInBundleIssue.Id():          notInBundleIssue,
		binstubConflictIssue.Id():      binstubConflictIssue,
		environmentCorruptedIssue.Id(): environmentCorruptedIssue,
		installFailedIssue.Id():        installFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		loadFailedIssue.Id():           loadFailedIssue,
	}
)

// Values returns every catalog issue ordered by id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id - b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
