package iam

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingSubjectCondition is returned when a federated trust document has
// no statement constraining the token subject.
var ErrMissingSubjectCondition = errors.New("federated trust has no subject condition")

// Federation describes how tokens from the cluster's identity provider may
// assume a job role.
type Federation struct {
	// ProviderARN is the identity provider principal, usually a deferred reference.
	ProviderARN any

	// Issuer is the provider's issuer without scheme. It prefixes condition keys.
	Issuer string

	Namespace string
	Account   string

	// Prefix is the service-account name prefix the job runner generates.
	Prefix string

	Audience string

	// Strict folds subject and audience into one statement. Without it the
	// audience statement is additive: any token with the right audience from
	// the same provider is admitted regardless of subject.
	Strict bool
}

// SubjectPattern returns the StringLike pattern admitting job service
// accounts in namespace for account. The wildcards stand for the
// job-run-specific segments the runner generates and are kept as is.
func SubjectPattern(namespace, prefix, account string) string {
	return fmt.Sprintf("system:serviceaccount:%s:%s-*-*-%s-*", namespace, prefix, account)
}

// ServiceAccountSubject returns the exact subject of one service account.
func ServiceAccountSubject(namespace, name string) string {
	return fmt.Sprintf("system:serviceaccount:%s:%s", namespace, name)
}

// SubjectKey returns the condition key of the subject claim.
func SubjectKey(issuer string) string { return issuer + ":sub" }

// AudienceKey returns the condition key of the audience claim.
func AudienceKey(issuer string) string { return issuer + ":aud" }

func (f Federation) validate() error {
	var missing []string
	if f.ProviderARN == nil {
		missing = append(missing, "provider")
	}
	for name, v := range map[string]string{
		"issuer":    f.Issuer,
		"namespace": f.Namespace,
		"account":   f.Account,
		"prefix":    f.Prefix,
		"audience":  f.Audience,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("federation is missing %s", strings.Join(sortStrings(missing), ", "))
	}
	if strings.Contains(f.Prefix, "*") {
		return fmt.Errorf("federation prefix %q must not contain wildcards", f.Prefix)
	}
	return nil
}

// AddFederatedTrust appends the federated trust statements for f to doc.
//
// By default two statements are added: one with a StringLike subject
// condition and one with a StringEquals audience condition, both admitting
// AssumeRoleWithWebIdentity from the same provider. In strict mode a single
// statement carries both conditions.
func AddFederatedTrust(doc *Document, f Federation) error {
	if err := f.validate(); err != nil {
		return err
	}

	subject := federatedStatement(f.ProviderARN, Condition{
		StringLike: {SubjectKey(f.Issuer): SubjectPattern(f.Namespace, f.Prefix, f.Account)},
	})

	if f.Strict {
		subject.Condition[StringEquals] = map[string]string{AudienceKey(f.Issuer): f.Audience}
		doc.AddStatements(subject)
		return nil
	}

	audience := federatedStatement(f.ProviderARN, Condition{
		StringEquals: {AudienceKey(f.Issuer): f.Audience},
	})
	doc.AddStatements(subject, audience)
	return nil
}

// AddServiceAccountTrust appends one statement admitting exactly the named
// service account with the given audience.
func AddServiceAccountTrust(doc *Document, providerARN any, issuer, namespace, name, audience string) error {
	if providerARN == nil || issuer == "" || namespace == "" || name == "" || audience == "" {
		return fmt.Errorf("service account trust requires provider, issuer, namespace, name and audience")
	}
	doc.AddStatements(federatedStatement(providerARN, Condition{
		StringEquals: {
			SubjectKey(issuer):  ServiceAccountSubject(namespace, name),
			AudienceKey(issuer): audience,
		},
	}))
	return nil
}

// ValidateFederatedTrust checks that at least one federated statement in doc
// constrains the subject claim of issuer.
func ValidateFederatedTrust(doc *Document, issuer string) error {
	key := SubjectKey(issuer)
	for _, s := range doc.Statement {
		if !s.isWebIdentity() {
			continue
		}
		if s.Condition[StringLike][key] != "" || s.Condition[StringEquals][key] != "" {
			return nil
		}
	}
	return fmt.Errorf("%w for issuer %s", ErrMissingSubjectCondition, issuer)
}

func federatedStatement(provider any, cond Condition) Statement {
	return Statement{
		Effect:    EffectAllow,
		Principal: &Principal{Federated: provider},
		Action:    []string{ActionAssumeRoleWithWebIdentity},
		Condition: cond,
	}
}

func (s Statement) isWebIdentity() bool {
	if s.Effect != EffectAllow || s.Principal == nil || s.Principal.Federated == nil {
		return false
	}
	for _, a := range s.Action {
		if a == ActionAssumeRoleWithWebIdentity {
			return true
		}
	}
	return false
}
