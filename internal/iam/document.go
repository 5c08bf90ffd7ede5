package iam

// PolicyVersion is the policy language version.
const PolicyVersion = "2012-10-17"

// Effect is Allow or Deny.
type Effect string

const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

// Condition operators.
const (
	StringEquals = "StringEquals"
	StringLike   = "StringLike"
)

// Actions used by trust statements.
const (
	ActionAssumeRole                = "sts:AssumeRole"
	ActionAssumeRoleWithWebIdentity = "sts:AssumeRoleWithWebIdentity"
)

// Document is a policy document.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is one policy statement.
type Statement struct {
	Sid       string     `json:"Sid,omitempty"`
	Effect    Effect     `json:"Effect"`
	Principal *Principal `json:"Principal,omitempty"`
	Action    []string   `json:"Action"`
	Resource  []any      `json:"Resource,omitempty"`
	Condition Condition  `json:"Condition,omitempty"`
}

// Principal identifies who a trust statement admits.
type Principal struct {
	Service   []string `json:"Service,omitempty"`
	Federated any      `json:"Federated,omitempty"`
	AWS       []any    `json:"AWS,omitempty"`
}

// Condition maps operator -> condition key -> expected value.
type Condition map[string]map[string]string

// Keys returns every condition key across operators.
func (c Condition) Keys() []string {
	var keys []string
	for _, entries := range c {
		for key := range entries {
			keys = append(keys, key)
		}
	}
	return sortStrings(keys)
}

// DeferredStatement is a Statement whose condition is resolved at apply
// time, such as a reference to a resolved JSON value.
type DeferredStatement struct {
	Sid       string     `json:"Sid,omitempty"`
	Effect    Effect     `json:"Effect"`
	Principal *Principal `json:"Principal,omitempty"`
	Action    []string   `json:"Action"`
	Resource  []any      `json:"Resource,omitempty"`
	Condition any        `json:"Condition"`
}

// Defer returns s with its condition replaced by condition.
func (s Statement) Defer(condition any) DeferredStatement {
	return DeferredStatement{
		Sid:       s.Sid,
		Effect:    s.Effect,
		Principal: s.Principal,
		Action:    s.Action,
		Resource:  s.Resource,
		Condition: condition,
	}
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Version: PolicyVersion, Statement: []Statement{}}
}

// AddStatements appends statements to the document.
func (d *Document) AddStatements(statements ...Statement) {
	d.Statement = append(d.Statement, statements...)
}

// ServiceTrust returns a trust document admitting the given service principals.
func ServiceTrust(services ...string) *Document {
	doc := NewDocument()
	doc.AddStatements(Statement{
		Effect:    EffectAllow,
		Principal: &Principal{Service: services},
		Action:    []string{ActionAssumeRole},
	})
	return doc
}

// Allow returns an Allow statement over actions and resources.
func Allow(actions []string, resources ...any) Statement {
	if len(resources) == 0 {
		resources = []any{"*"}
	}
	return Statement{Effect: EffectAllow, Action: actions, Resource: resources}
}
