// Copyright (c) 2017 Snowflake Computing Inc. All right reserved.

package pgadaptor

// AdaptorVersion is the version of the PostgreSQL adaptor.
const AdaptorVersion = "0.4.0"

// defaultApplicationName is reported to the server unless the connect string names one.
const defaultApplicationName = "zeeql-pgadaptor/" + AdaptorVersion
