package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Configure applies the deployment transformation to doc in place:
//
//  1. servers is replaced with a single entry pointing at the deployed
//     service endpoint.
//  2. components.securitySchemes.oauth2 is set to an authorization-code
//     flow built from the settings.
//  3. every operation under paths has its security requirement set to
//     [{oauth2: [scope]}], replacing any prior value.
//
// The transformation is deterministic and idempotent: re-applying it with
// the same settings is a no-op beyond the first run.
func Configure(doc *openapi3.T, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if doc == nil || doc.Components == nil {
		return &Error{Code: MalformedDocument, Message: "schema: document has no components section"}
	}
	if doc.Paths == nil {
		return &Error{Code: MalformedDocument, Message: "schema: document has no paths section"}
	}

	doc.Servers = openapi3.Servers{
		{URL: s.ServerURL, Description: serverDescription},
	}

	if doc.Components.SecuritySchemes == nil {
		doc.Components.SecuritySchemes = openapi3.SecuritySchemes{}
	}
	doc.Components.SecuritySchemes[securitySchemeName] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "oauth2",
			Flows: &openapi3.OAuthFlows{
				AuthorizationCode: &openapi3.OAuthFlow{
					AuthorizationURL: s.AuthorizationURL,
					TokenURL:         s.TokenURL,
					Scopes:           map[string]string{s.ScopeName: scopeDescription},
				},
			},
		},
	}

	// Operations() yields method entries only, so path-level parameters are
	// never touched. Existing security requirements are overwritten: the
	// platform's plugin auth model requires a uniform scope.
	for _, item := range doc.Paths {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			op.Security = openapi3.NewSecurityRequirements().With(
				openapi3.NewSecurityRequirement().Authenticate(securitySchemeName, s.ScopeName),
			)
		}
	}

	return nil
}
