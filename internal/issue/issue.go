// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	UnknownFilterId Id = iota + 1
	CatalogLoadFailedId
	ConfigLoadFailedId
	AdapterNotFoundId
	ContainerEngineNotFoundId
	ImageNotFoundId
	RunTimeoutId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // links to harness docs about this issue type
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

	unknownFilterIssue = &Issue{
		id: UnknownFilterId,
		mdMsg: `
# Unknown filter token!

Positional arguments must name a known implementation, fixture, or environment.

## Things you can try:
- List everything the catalog knows about:
~~~
$ conformat list
~~~

- Check for typos in the token
- If you maintain a custom catalog, make sure the entry is declared there and
  the catalog is selected in your config:
~~~yaml
catalog: /path/to/catalog.cue
~~~`,
	}

	catalogLoadFailedIssue = &Issue{
		id: CatalogLoadFailedId,
		mdMsg: `
# Failed to load the selection catalog!

The catalog file could not be read or does not satisfy the catalog schema.

## A catalog must declare three sets:
~~~cue
implementations: [
  {name: "substrate", adapter: "substrate-adapter", image: "conformat/substrate-adapter"},
]
fixtures: [
  {name: "scale-codec", args: "scale-codec"},
  {name: "host-api", args: "host-api --environment $CONFORMAT_ENVIRONMENT", envSensitive: true},
]
environments: [
  {name: "wasmi"},
]
~~~

## Things you can try:
- Check the error message above for the offending line/column
- Validate the file with the cue command-line tool
- Remove the 'catalog' entry from your config to fall back to the built-in catalog`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the conformat configuration file.

## Configuration file locations:
- Linux: ~/.config/conformat/config.yaml
- macOS: ~/Library/Application Support/conformat/config.yaml
- Windows: %APPDATA%\conformat\config.yaml

## Things you can try:
- Check the YAML syntax
- Remove the config file to use defaults

## Example configuration:
~~~yaml
workers: 4
timeout: 10m
container_engine: docker
bin_dir: ./bin
lib_dir: ./lib
~~~`,
	}

	adapterNotFoundIssue = &Issue{
		id: AdapterNotFoundId,
		mdMsg: `
# Adapter binary not found!

The local backend could not resolve an adapter executable on the search path.

## Things you can try:
- Build or download the adapters for the implementations under test
- Put the binaries in the local bin directory (extended onto PATH at startup):
~~~yaml
bin_dir: ./bin
~~~

- Or run the same matrix against container images instead:
~~~
$ conformat run --docker
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

You passed --docker but no container engine is available.

## Supported container engines:
- **Docker**
- **Podman** (used as a fallback when Docker is missing)

## Things you can try:
- Install Docker: https://docs.docker.com/get-docker/
- Install Podman: https://podman.io
- Or drop --docker to run locally built adapters instead`,
	}

	imageNotFoundIssue = &Issue{
		id: ImageNotFoundId,
		mdMsg: `
# Container image not found!

The image for an implementation under test is not present locally.

## Things you can try:
- Pull or build the implementation images referenced by the catalog:
~~~
$ docker pull conformat/kagome-adapter
~~~

- If you maintain a custom catalog, check its 'image' fields`,
	}

	runTimeoutIssue = &Issue{
		id: RunTimeoutId,
		mdMsg: `
# A test run exceeded its time bound!

The run was forcibly terminated and recorded with status TIMEOUT. Sibling runs
were not affected.

## Things you can try:
- Raise the per-run bound:
~~~
$ conformat run --timeout 30m
~~~

- Lower the worker count if the host is oversubscribed:
~~~
$ conformat run --workers 2
~~~`,
	}

	issues = map[Id]*Issue{
		unknownFilterIssue.Id():           unknownFilterIssue,
		catalogLoadFailedIssue.Id():       catalogLoadFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		adapterNotFoundIssue.Id():         adapterNotFoundIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		imageNotFoundIssue.Id():           imageNotFoundIssue,
		runTimeoutIssue.Id():              runTimeoutIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
