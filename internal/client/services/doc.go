// Package services contains the application services of the session
// client: authentication, session teardown and captcha solving. They
// orchestrate the API client and the local stores; the stores themselves
// never talk to each other.
package services
