package sqlinline

const QSelectIntegrationToken = `--sql 8d0f2b4c-6e9a-4157-b86d-9e8f7a6b5c4d
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 1f3b5d7e-9a2c-4460-87b2-4c3d2e1f0a9b
insert into integration_tokens(provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
  token = excluded.token,
  properties = excluded.properties,
  updated_at = now();
`
