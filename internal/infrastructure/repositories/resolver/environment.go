package resolver

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

const redactedSecret = "***"

// default usernames for token authentication per git host
var gitTokenUsers = map[string]string{
	"github.com":    "x-access-token",
	"gitlab.com":    "oauth2",
	"dev.azure.com": "pat",
}

// buildEnvironment extends base with the variables that hand credentials to
// the resolver: git url rewrites through GIT_CONFIG_* and pip index URLs.
func buildEnvironment(base []string, credentials []entities.Credential) []string {
	var gitPairs [][2]string
	var indexURL string
	var extraIndexURLs []string

	for _, credential := range credentials {
		switch credential.Type {
		case entities.CredentialTypeGitSource:
			gitPairs = append(gitPairs, gitRewrites(credential)...)
		case entities.CredentialTypePythonIndex:
			authenticated := indexWithUserInfo(credential)
			if credential.ReplacesBase && indexURL == "" {
				indexURL = authenticated
				continue
			}
			extraIndexURLs = append(extraIndexURLs, authenticated)
		}
	}

	env := make([]string, 0, len(base)+2*len(gitPairs)+3)
	for _, entry := range base {
		if len(gitPairs) > 0 && strings.HasPrefix(entry, "GIT_CONFIG_") {
			continue
		}
		if indexURL != "" && strings.HasPrefix(entry, "PIP_INDEX_URL=") {
			continue
		}
		if len(extraIndexURLs) > 0 && strings.HasPrefix(entry, "PIP_EXTRA_INDEX_URL=") {
			continue
		}
		env = append(env, entry)
	}

	if len(gitPairs) > 0 {
		env = append(env, "GIT_CONFIG_COUNT="+strconv.Itoa(len(gitPairs)))
		for i, pair := range gitPairs {
			env = append(env,
				fmt.Sprintf("GIT_CONFIG_KEY_%d=%s", i, pair[0]),
				fmt.Sprintf("GIT_CONFIG_VALUE_%d=%s", i, pair[1]),
			)
		}
	}
	if indexURL != "" {
		env = append(env, "PIP_INDEX_URL="+indexURL)
	}
	if len(extraIndexURLs) > 0 {
		env = append(env, "PIP_EXTRA_INDEX_URL="+strings.Join(extraIndexURLs, " "))
	}
	return env
}

// gitRewrites returns url.<authenticated>.insteadOf entries for the https and
// ssh forms of the credential's host.
func gitRewrites(credential entities.Credential) [][2]string {
	if credential.Host == "" || credential.Secret() == "" {
		return nil
	}
	user := credential.Username
	if user == "" {
		user = gitTokenUsers[credential.Host]
	}
	if user == "" {
		user = "x-access-token"
	}

	authenticated := (&url.URL{
		Scheme: "https",
		User:   url.UserPassword(user, credential.Secret()),
		Host:   credential.Host,
		Path:   "/",
	}).String()
	key := "url." + authenticated + ".insteadOf"
	return [][2]string{
		{key, "https://" + credential.Host + "/"},
		{key, "git@" + credential.Host + ":"},
	}
}

func indexWithUserInfo(credential entities.Credential) string {
	parsed, err := url.Parse(credential.IndexURL)
	if err != nil || credential.Secret() == "" {
		return credential.IndexURL
	}
	if credential.Username != "" {
		parsed.User = url.UserPassword(credential.Username, credential.Secret())
	} else {
		parsed.User = url.User(credential.Secret())
	}
	return parsed.String()
}

// redact masks every credential secret in text.
func redact(text string, credentials []entities.Credential) string {
	for _, credential := range credentials {
		for _, secret := range []string{credential.Password, credential.Token} {
			if secret == "" {
				continue
			}
			text = strings.ReplaceAll(text, secret, redactedSecret)
			escaped := strings.TrimPrefix(url.UserPassword("", secret).String(), ":")
			if escaped != secret {
				text = strings.ReplaceAll(text, escaped, redactedSecret)
			}
		}
	}
	return text
}
