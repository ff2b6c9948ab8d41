/*
Package consolesdk is a client for the accounting backend's authentication
and role-management REST API.

# SDKClient vs Session

SDKClient performs unauthenticated calls, in practice only the JSON login.
A successful login yields a bearer token; wrap it in a Session to make
authenticated calls:

	client := consolesdk.NewSDKClient("https://backend.example.com")

	login, err := client.LoginJSON(ctx, consolesdk.LoginRequest{
		CompanyName: "acme",
		Username:    "alice",
		Password:    password,
	})
	if err != nil {
		return err
	}

	session := client.NewSession(login.Token)
	info, err := session.GetUserInfo(ctx)

# Role management

Permission records are looked up by user id, with a by-username query as the
fallback for backends that do not expose numeric ids:

	perms, err := session.GetUserPermissions(ctx, "42", "acme")
	perms, err = session.FindUserPermissions(ctx, "acme", "alice")

	dbs, err := session.ListDatabases(ctx, "acme")

	err = session.SubmitAccessRequest(ctx, consolesdk.AccessRequest{
		Username:      "alice",
		CompanyName:   "acme",
		RequestedPage: "/reports",
		PageName:      "Reports",
		Reason:        "month end close",
		RequestType:   "page_access",
	})

# Errors

Non-2xx responses are returned as *APIError carrying the status code and
whatever message the backend supplied in "detail", "error_description",
"error" or "message":

	var apiErr *consolesdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		// try the fallback lookup
	}
*/
package consolesdk
