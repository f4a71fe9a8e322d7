/*
Package pgadaptor is a PostgreSQL adaptor for the ZeeQL object model. It talks
the PostgreSQL wire protocol directly and exposes channels, transactions,
row inserts with RETURNING, and schema reflection.

# Connecting

An Adaptor is created from a URL or a keyword/value connect string:

	adaptor := pgadaptor.NewAdaptor("host=localhost dbname=contacts user=admin", pgadaptor.ChannelOptions{})
	ch, err := adaptor.OpenChannel(ctx)
	if err != nil {
		return err
	}
	defer adaptor.ReleaseChannel(ch)

Connections may also be described in $PGADAPTOR_HOME/connections.toml (default
~/.pgadaptor) and loaded with LoadConnectionConfig. The file must only be
readable and writable by its owner.

# Statements

Every statement is sent with the extended query protocol and results are
requested in binary format. Values are bound as $1, $2 and so on:

	records, err := ch.FetchRecords(ctx, `SELECT * FROM person WHERE id = $1`, pgadaptor.Int64(42))

A channel runs one statement at a time and is not safe for concurrent use.
Server errors of severity ERROR leave the channel usable. FATAL and PANIC
errors, as well as transport failures, close it.

# Reflection

ModelFetch reads tables, columns, primary keys and single column foreign keys
from the system catalog and builds a Model:

	model, err := pgadaptor.NewModelFetch(ch).FetchModel(ctx)

The model is tagged with a fingerprint of the catalog, so callers can detect
schema changes with FetchModelTag.

# Logging

The package logs through a logrus based logger which masks passwords. Use
SetLogger to plug in a custom AdaptorLogger. A client configuration file
(pgadaptor_client_config.json) can set the log level and a log directory:

	{
	  "common": {
	    "log_level": "INFO",
	    "log_path": "/var/log/app"
	  }
	}

Set ChannelOptions.LogSQL to log every statement with its binds.
*/
package pgadaptor
