package sqlinline

const QInsertAsset = `--sql 9b1d3f5a-7c0e-4248-8a6b-4d3e2f1a0b9c
insert into assets(id, user_id, job_id, kind, side, storage_key, filename, mime, bytes, properties, created_at)
values (
  gen_random_uuid(),
  $1::uuid,
  nullif($2::text, '')::uuid,
  $3::text,
  nullif($4::text, ''),
  $5::text,
  $6::text,
  $7::text,
  $8::bigint,
  coalesce($9::jsonb, '{}'::jsonb),
  now()
)
returning id, created_at;
`

const QListAssetsByUser = `--sql 6a8c0e2f-4b7d-4951-b38a-1c0d9e8f7a6b
select id, job_id, kind, coalesce(side, ''), storage_key, filename, mime, bytes, properties, created_at
from assets
where user_id = $1::uuid
  and ($2::text = '' or kind = $2::text)
order by created_at desc
limit $3::int offset $4::int;
`

const QSelectAssetByID = `--sql 2f4a6c8e-0d3b-4762-95f4-8b7a6c5d4e3f
select id, user_id, job_id, kind, coalesce(side, ''), storage_key, filename, mime, bytes, properties, created_at
from assets
where id = $1::uuid
limit 1;
`

const QDeleteAsset = `--sql e7c5b3a1-9f2d-4086-b7c4-5a4b3c2d1e0f
delete from assets
where id = $1::uuid
  and user_id = $2::uuid;
`
