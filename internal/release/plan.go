package release

// Info is the computed release: what a run wants the draft to look like.
// It is built once per run and only passed downstream.
type Info struct {
	TagName    string
	Name       string
	Body       string
	Draft      bool
	Prerelease bool
	Commitish  string
}

// Overrides are explicit caller inputs. Empty strings and nil pointers mean
// "not supplied".
type Overrides struct {
	Tag        string
	Name       string
	Commitish  string
	Prerelease *bool
	Publish    *bool
}

// Defaults are the config-level values used when neither an override nor a
// rendered value is present.
type Defaults struct {
	Prerelease bool
	Publish    bool
	Commitish  string
	// Ref is the triggering ref. A new release targets it when no commitish
	// is configured; an existing draft keeps its own target instead.
	Ref string
}

// Kind tells the caller which request to send.
type Kind int

const (
	// Create a new release.
	Create Kind = iota
	// Update the existing draft identified by Action.ReleaseID.
	Update
)

func (k Kind) String() string {
	if k == Update {
		return "update"
	}
	return "create"
}

// Action is the outcome of Plan.
type Action struct {
	Kind      Kind
	ReleaseID int64
	Info      Info
}

// Plan decides between creating a release and updating the existing draft.
// Name and tag resolve as explicit override, then rendered value, then the
// existing draft's value. Commitish resolves as override, then config, then
// the draft's target on update, then the triggering ref. Prerelease and publish resolve as override, then
// config default. The body is always the rendered one.
func Plan(draft *Release, rendered Info, o Overrides, d Defaults) Action {
	info := Info{
		Body:       rendered.Body,
		TagName:    first(o.Tag, rendered.TagName),
		Name:       first(o.Name, rendered.Name),
		Commitish:  first(o.Commitish, rendered.Commitish, d.Commitish),
		Prerelease: d.Prerelease,
		Draft:      !d.Publish,
	}
	if o.Prerelease != nil {
		info.Prerelease = *o.Prerelease
	}
	if o.Publish != nil {
		info.Draft = !*o.Publish
	}

	if draft == nil {
		info.Commitish = first(info.Commitish, d.Ref)
		return Action{Kind: Create, Info: info}
	}

	info.TagName = first(info.TagName, draft.TagName)
	info.Name = first(info.Name, draft.Name)
	info.Commitish = first(info.Commitish, draft.TargetCommitish, d.Ref)
	return Action{Kind: Update, ReleaseID: draft.ID, Info: info}
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
