package pathmap

// ruleKind selects the handler for a matched alias.
type ruleKind int

const (
	rulePersonal ruleKind = iota
	ruleCommunity
	ruleProject
)

// rule is one entry of the ordered alias table.
//
// Rules are substring matches evaluated in declaration order; the first
// match wins. Order is load-bearing: longer spellings must precede their
// shorter suffixes (e.g. "jupyter/MyData" before "MyData") so the stripped
// remainder is correct.
type rule struct {
	alias string
	kind  ruleKind
}

// defaultRules preserves the legacy matching semantics of the hosted
// notebook environments these paths originate from.
var defaultRules = []rule{
	// Personal storage. Identity is prepended as the first path segment.
	{alias: "/home/jupyter/MyData", kind: rulePersonal},
	{alias: "/home/jupyter/mydata", kind: rulePersonal},
	{alias: "jupyter/MyData", kind: rulePersonal},
	{alias: "jupyter/mydata", kind: rulePersonal},
	{alias: "/MyData", kind: rulePersonal},
	{alias: "/mydata", kind: rulePersonal},
	{alias: "MyData", kind: rulePersonal},
	{alias: "mydata", kind: rulePersonal},

	// Community storage. Paths are relative to the system root.
	{alias: "jupyter/CommunityData", kind: ruleCommunity},
	{alias: "/CommunityData", kind: ruleCommunity},
	{alias: "CommunityData", kind: ruleCommunity},

	// Project storage. The next path segment is a project id that must be
	// resolved to a storage system via the gateway.
	{alias: "jupyter/MyProjects", kind: ruleProject},
	{alias: "jupyter/projects", kind: ruleProject},
	{alias: "/MyProjects", kind: ruleProject},
	{alias: "/projects", kind: ruleProject},
	{alias: "projects", kind: ruleProject},
}
