package graphiql

import (
	"encoding/json"
	"html/template"
)

func indentJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// notice is written as-is ahead of the doctype; html/template drops comments
// found in template text.
const notice template.HTML = `<!--
The request to this GraphQL server provided the header "Accept: text/html"
and as a result has been presented GraphiQL - an in-browser IDE for
exploring GraphQL.

If you wish to receive JSON, provide the header "Accept: application/json" or
add "&raw" to the end of the URL within a browser.
-->`

var pageTemplate = template.Must(template.New("graphiql").Parse(`{{.Notice}}
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <title>GraphiQL</title>
  <meta name="robots" content="noindex" />
  <meta name="referrer" content="origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    body {
      margin: 0;
      overflow: hidden;
    }
    #graphiql {
      height: 100vh;
    }
  </style>
  <link href="https://unpkg.com/graphiql@{{.GraphiQLVersion}}/graphiql.css" rel="stylesheet" />
  <script src="https://unpkg.com/promise-polyfill@8.1.3/dist/polyfill.min.js"></script>
  <script src="https://unpkg.com/unfetch@4.2.0/dist/unfetch.umd.js"></script>
  <script src="https://unpkg.com/react@{{.ReactVersion}}/umd/react.production.min.js"></script>
  <script src="https://unpkg.com/react-dom@{{.ReactVersion}}/umd/react-dom.production.min.js"></script>
  <script src="https://unpkg.com/graphiql@{{.GraphiQLVersion}}/graphiql.min.js"></script>
{{- if .SubscriptionEndpoint}}
{{- if .WebsocketV1}}
  <script src="https://unpkg.com/graphql-ws@4.1.0/umd/graphql-ws.min.js"></script>
  <script src="https://unpkg.com/subscriptions-transport-ws@0.9.18/browser/client.js"></script>
{{- else}}
  <script src="https://unpkg.com/subscriptions-transport-ws@0.9.18/browser/client.js"></script>
  <script src="https://unpkg.com/graphiql-subscriptions-fetcher@0.0.2/browser/client.js"></script>
{{- end}}
{{- end}}
</head>
<body>
  <div id="graphiql">Loading...</div>
  <script>
    // Collect the URL parameters
    var parameters = {};
    window.location.search.substr(1).split('&').forEach(function (entry) {
      var eq = entry.indexOf('=');
      if (eq >= 0) {
        parameters[decodeURIComponent(entry.slice(0, eq))] =
          decodeURIComponent(entry.slice(eq + 1));
      }
    });

    // Produce a Location query string from a parameter object.
    function locationQuery(params) {
      return '?' + Object.keys(params).filter(function (key) {
        return Boolean(params[key]);
      }).map(function (key) {
        return encodeURIComponent(key) + '=' +
          encodeURIComponent(params[key]);
      }).join('&');
    }

    // Derive a fetch URL from the current URL, sans the GraphQL parameters.
    var graphqlParamNames = {
      query: true,
      variables: true,
      operationName: true
    };

    var otherParams = {};
    for (var k in parameters) {
      if (parameters.hasOwnProperty(k) && graphqlParamNames[k] !== true) {
        otherParams[k] = parameters[k];
      }
    }
    var fetchURL = locationQuery(otherParams);

    // Defines a GraphQL fetcher using the fetch API.
    function graphQLFetcher(graphQLParams, opts) {
      return fetch(fetchURL, {
        method: 'post',
        headers: Object.assign(
          {
            'Accept': 'application/json',
            'Content-Type': 'application/json'
          },
          opts && opts.headers,
        ),
        body: JSON.stringify(graphQLParams),
        credentials: 'include',
      }).then(function (response) {
        return response.json();
      });
    }

    function makeFetcher() {
      var subscriptionEndpoint = {{.SubscriptionEndpoint}};
      if (!subscriptionEndpoint) {
        return graphQLFetcher;
      }
{{- if .WebsocketV1}}
      var client = window.graphqlWs.createClient({ url: subscriptionEndpoint });
      return function (graphQLParams, opts) {
        if (!/^\s*subscription\b/m.test(graphQLParams.query || '')) {
          return graphQLFetcher(graphQLParams, opts);
        }
        return {
          subscribe: function (observer) {
            var dispose = client.subscribe(graphQLParams, {
              next: observer.next,
              error: observer.error,
              complete: observer.complete,
            });
            return { unsubscribe: dispose };
          },
        };
      };
{{- else}}
      var subscriptionsClient = new window.SubscriptionsTransportWs.SubscriptionClient(
        subscriptionEndpoint,
        { reconnect: true }
      );
      return window.GraphiQLSubscriptionsFetcher.graphQLFetcher(
        subscriptionsClient,
        graphQLFetcher
      );
{{- end}}
    }

    // When the query and variables string is edited, update the URL bar so
    // that it can be easily shared.
    function onEditQuery(newQuery) {
      parameters.query = newQuery;
      updateURL();
    }

    function onEditVariables(newVariables) {
      parameters.variables = newVariables;
      updateURL();
    }

    function onEditOperationName(newOperationName) {
      parameters.operationName = newOperationName;
      updateURL();
    }

    function updateURL() {
      history.replaceState(null, null, locationQuery(parameters));
    }

    // Render <GraphiQL /> into the body.
    ReactDOM.render(
      React.createElement(GraphiQL, {
        fetcher: makeFetcher(),
        onEditQuery: onEditQuery,
        onEditVariables: onEditVariables,
        onEditOperationName: onEditOperationName,
        query: {{.Query}},
        response: {{.Result}},
        variables: {{.Variables}},
        operationName: {{.OperationName}},
        defaultQuery: {{.DefaultQuery}},
        headerEditorEnabled: {{.HeaderEditorEnabled}},
        shouldPersistHeaders: {{.ShouldPersistHeaders}},
      }),
      document.getElementById('graphiql')
    );
  </script>
</body>
</html>
`))
