// Package service wraps the CRM REST endpoints in typed calls. Each method
// performs exactly one request; there is no caching and no retry beyond
// what the api client does.
package service

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/crmterm/internal/api"
)

const apiPrefix = "/api/v1"

// Services bundles every resource service over a shared client.
type Services struct {
	Companies      *Companies
	Contacts       *Contacts
	Notes          *Notes
	Opportunities  *Opportunities
	Events         *Events
	Notifications  *Notifications
	Messages       *Messages
	Templates      *Templates
	IncomingEmails *IncomingEmails
	Auth           *Auth
}

// New builds all resource services on top of c.
func New(c *api.Client) *Services {
	return &Services{
		Companies:      &Companies{c: c},
		Contacts:       &Contacts{c: c},
		Notes:          &Notes{c: c},
		Opportunities:  &Opportunities{c: c},
		Events:         &Events{c: c},
		Notifications:  &Notifications{c: c},
		Messages:       &Messages{c: c},
		Templates:      &Templates{c: c},
		IncomingEmails: &IncomingEmails{c: c},
		Auth:           &Auth{c: c},
	}
}

// itemPath joins a collection path and an id with the trailing slash the
// backend router expects.
func itemPath(collection string, id int64) string {
	return fmt.Sprintf("%s%d/", collection, id)
}

func idQuery(key string, id int64) url.Values {
	return url.Values{key: {strconv.FormatInt(id, 10)}}
}
